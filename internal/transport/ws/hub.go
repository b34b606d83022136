package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgResponseSubmitted MessageType = "response_submitted"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages the live submission feed: owners subscribe per survey and
// receive an event for every submitted response.
type Hub struct {
	// Survey -> subscribed owner connections
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	log *logrus.Logger
}

// Connection represents one subscribed owner connection
type Connection struct {
	SurveyID string
	OwnerID  string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message for every subscriber of one survey
type BroadcastMessage struct {
	SurveyID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *logrus.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SurveyID] == nil {
				h.conns[conn.SurveyID] = make(map[*Connection]bool)
			}
			h.conns[conn.SurveyID][conn] = true
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"surveyId": conn.SurveyID, "ownerId": conn.OwnerID}).Debug("feed subscriber connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.SurveyID]; ok && subs[conn] {
				delete(subs, conn)
				close(conn.Send)
				if len(subs) == 0 {
					delete(h.conns, conn.SurveyID)
				}
			}
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"surveyId": conn.SurveyID, "ownerId": conn.OwnerID}).Debug("feed subscriber disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.SurveyID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToOwner sends an event to every feed subscriber of a survey
// (implements service.Broadcaster)
func (h *Hub) BroadcastToOwner(surveyID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SurveyID: surveyID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
