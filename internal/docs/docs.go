package docs

import (
	"embed"
	"net/http"

	"github.com/goccy/go-yaml"
)

//go:embed openapi.yaml swagger.html
var fs embed.FS

// yamlToJSON se reemplaza en tests.
var yamlToJSON = yaml.YAMLToJSON

// OpenAPIHandler sirve el documento OpenAPI embebido tal cual (YAML).
func OpenAPIHandler() http.HandlerFunc {
	return serveFile("openapi.yaml", "application/yaml; charset=utf-8", "openapi not found")
}

// OpenAPIJSONHandler sirve el mismo documento convertido a JSON.
func OpenAPIJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile("openapi.yaml")
		if err != nil {
			http.Error(w, "openapi not found", http.StatusInternalServerError)
			return
		}
		out, err := yamlToJSON(b)
		if err != nil {
			http.Error(w, "openapi is not valid yaml", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

func SwaggerUIHandler() http.HandlerFunc {
	return serveFile("swagger.html", "text/html; charset=utf-8", "swagger ui not found")
}

func serveFile(name, contentType, missing string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(name)
		if err != nil {
			http.Error(w, missing, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}
