package rest

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"surveyhub/internal/service"
	"surveyhub/internal/transport/rest/handler"
	"surveyhub/internal/transport/rest/middleware"
	"surveyhub/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	SurveyService   *service.SurveyService
	ResponseService *service.ResponseService
	ExportService   *service.ExportService
	WSHub           *ws.Hub
	Log             *logrus.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	exportHandler := handler.NewExportHandler(c.ExportService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SurveyService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)
	r.Use(requestLogger(c.Log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Respondent routes (anonymous allowed; identity attached when present)
	public := v1.NewRoute().Subrouter()
	public.Use(authMW.OptionalUser)
	public.HandleFunc("/public/surveys/{slug}", surveyHandler.GetPublic).Methods("GET", "OPTIONS")
	public.HandleFunc("/surveys/{surveyId}/responses", responseHandler.Submit).Methods("POST", "OPTIONS")
	public.HandleFunc("/surveys/{surveyId}/responses/draft", responseHandler.SaveDraft).Methods("POST", "OPTIONS")
	public.HandleFunc("/responses/{uuid}", responseHandler.GetByUUID).Methods("GET", "OPTIONS")

	// WebSocket feed (token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}/feed", wsHandler.Feed).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Owner routes (require owner auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/publish", surveyHandler.Publish).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/close", surveyHandler.Close).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/responses", responseHandler.ListBySurvey).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/export", exportHandler.Export).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}
