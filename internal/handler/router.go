package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	documentHandler *DocumentHandler,
	requestLogger func(http.Handler) http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-annotator"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Session lifecycle
	api.HandleFunc("/documents", documentHandler.UploadDocument).Methods("POST")
	api.HandleFunc("/documents/{id}", documentHandler.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", documentHandler.CloseDocument).Methods("DELETE")

	// Editing
	api.HandleFunc("/documents/{id}/view", documentHandler.UpdateView).Methods("PUT")
	api.HandleFunc("/documents/{id}/tool", documentHandler.UpdateTool).Methods("PUT")
	api.HandleFunc("/documents/{id}/pointer", documentHandler.HandlePointer).Methods("POST")
	api.HandleFunc("/documents/{id}/text", documentHandler.HandleText).Methods("POST")
	api.HandleFunc("/documents/{id}/undo", documentHandler.Undo).Methods("POST")
	api.HandleFunc("/documents/{id}/annotations", documentHandler.GetAnnotations).Methods("GET")
	api.HandleFunc("/documents/{id}/annotations/{annotationId}", documentHandler.DeleteAnnotation).Methods("DELETE")

	// Output
	api.HandleFunc("/documents/{id}/frame.png", documentHandler.GetFrame).Methods("GET")
	api.HandleFunc("/documents/{id}/export", documentHandler.ExportDocument).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
