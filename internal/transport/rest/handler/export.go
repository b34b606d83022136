package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"surveyhub/internal/service"
	"surveyhub/internal/transport/rest/middleware"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	exportSvc *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportSvc *service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Export handles GET /v1/surveys/{surveyId}/export?format=csv|json
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	surveyID := mux.Vars(r)["surveyId"]

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		doc, err := h.exportSvc.ExportJSON(r.Context(), ownerID, surveyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)

	case "csv":
		data, err := h.exportSvc.ExportCSV(r.Context(), ownerID, surveyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="survey-%s.csv"`, surveyID))
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
	}
}
