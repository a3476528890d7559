package computacion

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lelo88/computacion-api-golang/internal/httpx"
	"github.com/Lelo88/computacion-api-golang/internal/logging"
)

// Mensajes expuestos al cliente. No incluyen detalles del store.
const (
	messageWelcome           = "Bienvenido a la API de Computacion"
	messageUnavailable       = "Error al conectarse a la base de datos"
	messageInvalidID         = "El id debe ser un numero entero"
	messageInvalidPrecio     = "El precio debe ser un numero"
	messageInvalidNombre     = "El nombre no tiene un formato valido"
	messageNotFound          = "Objeto no encontrado"
	messageListFailed        = "Error al obtener los objetos de la base de datos"
	messageGetFailed         = "Error al obtener el objeto de la base de datos"
	messageInvalidCreate     = "Error en el formato de datos a crear."
	messageCreateFailed      = "Error al intentar agregar un nuevo objeto"
	messageInvalidUpdate     = "Error en el formato de datos a modificar."
	messageUpdateFailed      = "Error al modificar el objeto"
	messageInvalidPrecioBody = "Error en el formato de datos o campo 'precio' no proporcionado."
	messagePatchFailed       = "Error al modificar el precio"
	messageInvalidDelete     = "El id debe ser un numero entero distinto de cero"
	messageDeleteMissing     = "No se encontró ningun objeto con el id seleccionado."
	messageDeleteFailed      = "Error al eliminar el objeto"
)

// ServiceAPI define lo que el handler necesita.
// Permite testear handlers con stubs sin tocar el store.
type ServiceAPI interface {
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, codigo int64) (Document, error)
	SearchByNombre(ctx context.Context, pattern string) ([]Document, error)
	SearchByPrecio(ctx context.Context, minimo int64) ([]Document, error)
	Create(ctx context.Context, document Document) (Document, error)
	Update(ctx context.Context, codigo int64, fields Document) (Document, error)
	UpdatePrecio(ctx context.Context, codigo int64, precio any) error
	Delete(ctx context.Context, codigo int64) error
}

// Handler HTTP para computacion.
// Solo traduce HTTP <-> dominio (service).
type Handler struct {
	service ServiceAPI
}

// NewHandler crea un handler de computacion.
func NewHandler(service ServiceAPI) *Handler {
	return &Handler{service: service}
}

// Welcome maneja GET /.
func (handler *Handler) Welcome(writer http.ResponseWriter, request *http.Request) {
	httpx.Text(writer, http.StatusOK, messageWelcome)
}

// List maneja GET /computacion.
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	documents, err := handler.service.List(request.Context())
	if err != nil {
		failText(writer, request, err, "", messageListFailed)
		return
	}

	httpx.JSON(writer, http.StatusOK, documents)
}

// GetByID maneja GET /computacion/{id}.
func (handler *Handler) GetByID(writer http.ResponseWriter, request *http.Request) {
	codigo, err := parseInt(request, "id")
	if err != nil {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidID)
		return
	}

	document, err := handler.service.Get(request.Context(), codigo)
	if err != nil {
		failText(writer, request, err, messageNotFound, messageGetFailed)
		return
	}

	httpx.JSON(writer, http.StatusOK, document)
}

// ByNombre maneja GET /computacion/nombre/{nombre}.
// El parámetro se usa como patrón, sin distinguir mayúsculas.
func (handler *Handler) ByNombre(writer http.ResponseWriter, request *http.Request) {
	pattern, err := pathParam(request, "nombre")
	if err != nil {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidNombre)
		return
	}

	documents, err := handler.service.SearchByNombre(request.Context(), pattern)
	if err != nil {
		failText(writer, request, err, messageNotFound, messageGetFailed)
		return
	}

	httpx.JSON(writer, http.StatusOK, documents)
}

// ByPrecio maneja GET /computacion/precio/{precio}.
// Un precio con decimales se trunca: 12.5 busca desde 12.
func (handler *Handler) ByPrecio(writer http.ResponseWriter, request *http.Request) {
	minimo, err := parseTruncated(request, "precio")
	if err != nil {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidPrecio)
		return
	}

	documents, err := handler.service.SearchByPrecio(request.Context(), minimo)
	if err != nil {
		failText(writer, request, err, messageNotFound, messageGetFailed)
		return
	}

	httpx.JSON(writer, http.StatusOK, documents)
}

// Create maneja POST /computacion.
// Un body ausente o inválido corta el request con 400.
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	document, err := DecodeDocument(request.Body)
	if err != nil || len(document) == 0 {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidCreate)
		return
	}

	created, err := handler.service.Create(request.Context(), document)
	if err != nil {
		if errors.Is(err, ErrorInvalidInput) {
			httpx.Text(writer, http.StatusBadRequest, messageInvalidCreate)
			return
		}
		failText(writer, request, err, "", messageCreateFailed)
		return
	}

	httpx.JSON(writer, http.StatusCreated, created)
}

// Update maneja PUT /computacion/{id}.
// Responde con los campos enviados; no verifica que el documento exista.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	codigo, err := parseInt(request, "id")
	if err != nil {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidID)
		return
	}

	fields, err := DecodeDocument(request.Body)
	if err != nil || len(fields) == 0 {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidUpdate)
		return
	}

	updated, err := handler.service.Update(request.Context(), codigo, fields)
	if err != nil {
		if errors.Is(err, ErrorInvalidInput) {
			httpx.Text(writer, http.StatusBadRequest, messageInvalidUpdate)
			return
		}
		failText(writer, request, err, "", messageUpdateFailed)
		return
	}

	httpx.JSON(writer, http.StatusOK, updated)
}

// Patch maneja PATCH /computacion/{id}.
// Solo toca precio; todas las respuestas de error son JSON {"error": ...}.
func (handler *Handler) Patch(writer http.ResponseWriter, request *http.Request) {
	codigo, err := parseInt(request, "id")
	if err != nil {
		httpx.Error(writer, http.StatusBadRequest, messageInvalidID)
		return
	}

	fields, err := DecodeDocument(request.Body)
	if err != nil || !fields.Has(FieldPrecio) {
		httpx.Error(writer, http.StatusBadRequest, messageInvalidPrecioBody)
		return
	}
	precio := fields[FieldPrecio]

	err = handler.service.UpdatePrecio(request.Context(), codigo, precio)
	if err != nil {
		switch {
		case errors.Is(err, ErrorNotFound):
			httpx.Error(writer, http.StatusNotFound, messageNotFound)
		case errors.Is(err, ErrorUnavailable):
			logFailure(request, err)
			httpx.Error(writer, http.StatusInternalServerError, messageUnavailable)
		default:
			logFailure(request, err)
			httpx.Error(writer, http.StatusInternalServerError, messagePatchFailed)
		}
		return
	}

	httpx.JSON(writer, http.StatusOK, Document{FieldPrecio: precio})
}

// Delete maneja DELETE /computacion/{id}.
// El id 0 se rechaza igual que uno no numérico.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	codigo, err := parseInt(request, "id")
	if err != nil || codigo == 0 {
		httpx.Text(writer, http.StatusBadRequest, messageInvalidDelete)
		return
	}

	if err := handler.service.Delete(request.Context(), codigo); err != nil {
		failText(writer, request, err, messageDeleteMissing, messageDeleteFailed)
		return
	}

	// 204 No Content: respuesta vacía.
	httpx.NoContent(writer)
}

// parseInt lee un parámetro de ruta entero en base 10.
func parseInt(request *http.Request, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(chi.URLParam(request, name)), 10, 64)
}

// parseTruncated acepta enteros o decimales y descarta la parte fraccionaria.
func parseTruncated(request *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(request, name))
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	truncated := math.Trunc(value)
	if math.IsNaN(truncated) || truncated < math.MinInt64 || truncated >= math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return int64(truncated), nil
}

// pathParam devuelve el parámetro decodificado.
// chi lo entrega sin decodificar cuando el cliente escapó distinto que Go (URL.RawPath).
func pathParam(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if request.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

// failText traduce errores de dominio a respuestas en texto plano.
// notFound vacío significa que la ruta no tiene caso 404.
func failText(writer http.ResponseWriter, request *http.Request, err error, notFound, failure string) {
	switch {
	case notFound != "" && errors.Is(err, ErrorNotFound):
		httpx.Text(writer, http.StatusNotFound, notFound)
	case errors.Is(err, ErrorUnavailable):
		logFailure(request, err)
		httpx.Text(writer, http.StatusInternalServerError, messageUnavailable)
	default:
		// No filtramos detalles internos.
		logFailure(request, err)
		httpx.Text(writer, http.StatusInternalServerError, failure)
	}
}

func logFailure(request *http.Request, err error) {
	logging.FromContext(request.Context()).Error().
		Err(err).
		Str("method", request.Method).
		Str("path", request.URL.Path).
		Msg("store operation failed")
}
