package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyhub/internal/model"
	"surveyhub/internal/service"
	"surveyhub/internal/transport/rest/middleware"
)

// ResponseHandler handles submission and draft endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// SubmitRequest is the request body for submit and draft-save calls
type SubmitRequest struct {
	Answers    []service.AnswerInput  `json:"answers"`
	Metadata   model.ResponseMetadata `json:"metadata"`
	ResponseID string                 `json:"responseId,omitempty"`
}

// Submit handles POST /v1/surveys/{surveyId}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.SubmitInput{
		Answers:  req.Answers,
		Metadata: withClientContext(r, req.Metadata),
		UserID:   middleware.GetUserID(r.Context()),
	}

	response, err := h.responseSvc.Submit(r.Context(), surveyID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// SaveDraft handles POST /v1/surveys/{surveyId}/responses/draft
func (h *ResponseHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.SubmitInput{
		Answers:  req.Answers,
		Metadata: withClientContext(r, req.Metadata),
		UserID:   middleware.GetUserID(r.Context()),
	}

	draft, err := h.responseSvc.SaveDraft(r.Context(), surveyID, in, req.ResponseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// GetByUUID handles GET /v1/responses/{uuid}
func (h *ResponseHandler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	responseUUID := mux.Vars(r)["uuid"]

	detail, err := h.responseSvc.GetByUUID(r.Context(), responseUUID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ListBySurvey handles GET /v1/surveys/{surveyId}/responses
func (h *ResponseHandler) ListBySurvey(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	surveyID := mux.Vars(r)["surveyId"]
	status := model.ResponseStatus(r.URL.Query().Get("status"))

	responses, err := h.responseSvc.ListBySurvey(r.Context(), ownerID, surveyID, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
}

// withClientContext fills request-derived metadata the client cannot be
// trusted to set.
func withClientContext(r *http.Request, meta model.ResponseMetadata) model.ResponseMetadata {
	if meta.UserAgent == "" {
		meta.UserAgent = r.UserAgent()
	}
	if meta.IPAddress == "" {
		meta.IPAddress = r.RemoteAddr
	}
	return meta
}
