package service

// Broadcaster pushes live events to subscribed survey owners. The WebSocket
// hub implements it; services stay unaware of the transport.
type Broadcaster interface {
	BroadcastToOwner(surveyID string, event string, payload any)
}
