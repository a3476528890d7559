package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta Swagger UI y el documento OpenAPI en YAML y JSON.
// Rutas planas: un r.Route("/docs") también atiende /docs y taparía la redirección.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/", SwaggerUIHandler())
	r.Get("/docs/openapi.yaml", OpenAPIHandler())
	r.Get("/docs/openapi.json", OpenAPIJSONHandler())
}
