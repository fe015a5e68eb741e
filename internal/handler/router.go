package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BahMbeirik/Dossiers-Medicaux/config"
)

// NewRouter builds the HTTP router.
func NewRouter(dh *DocumentHandler, rh *ReferenceHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Routes
	r.Route("/v1/documents", func(r chi.Router) {
		r.Post("/", dh.CreateDocument)
		r.Get("/{document_id}", dh.GetDocument)
		r.Get("/{document_id}/integrity", dh.VerifyDocument)
		r.Get("/{document_id}/integrity/local", dh.VerifyLocal)
		r.Get("/{document_id}/integrity/anchor", dh.VerifyAnchored)
	})
	r.Get("/v1/patients/{patient_id}/documents", dh.ListPatientDocuments)

	r.Route("/v1/categories", func(r chi.Router) {
		r.Post("/", rh.CreateCategory)
		r.Get("/", rh.ListCategories)
		r.Post("/{category_id}/fields", rh.CreateField)
		r.Get("/{category_id}/fields", rh.ListFields)
	})
	r.Route("/v1/hospitals", func(r chi.Router) {
		r.Post("/", rh.CreateHospital)
		r.Get("/", rh.ListHospitals)
	})

	if cfg.OtelEnabled {
		return otelhttp.NewHandler(r, "dossiers-medicaux")
	}
	return r
}
