package computacion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Colección y campos conocidos. Cualquier otro campo se guarda tal cual.
const (
	CollectionName = "computacion"

	FieldID     = "_id"
	FieldCodigo = "codigo"
	FieldNombre = "nombre"
	FieldPrecio = "precio"
)

// Document es un registro de la colección "computacion".
// codigo (entero), nombre (texto) y precio (número) son los campos que usan las búsquedas.
type Document map[string]any

// Has indica si el campo vino en el documento, aunque sea null.
func (document Document) Has(field string) bool {
	_, ok := document[field]
	return ok
}

// Clone copia el primer nivel del documento.
func (document Document) Clone() Document {
	out := make(Document, len(document)+1)
	for key, value := range document {
		out[key] = value
	}
	return out
}

// DecodeDocument lee un objeto JSON.
// Los números enteros quedan como int64 y el resto como float64, así codigo se compara
// numéricamente en cualquier store.
func DecodeDocument(reader io.Reader) (Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty body", ErrorInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", ErrorInvalidInput, err)
	}

	// Un único valor por body: después solo puede venir espacio en blanco.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrorInvalidInput)
	}

	object, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrorInvalidInput)
	}

	return Document(normalize(object).(map[string]any)), nil
}

func normalize(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer
		}
		float, err := typed.Float64()
		if err != nil {
			// Fuera de rango para float64: se conserva el texto.
			return typed.String()
		}
		return float
	case map[string]any:
		for key, nested := range typed {
			typed[key] = normalize(nested)
		}
		return typed
	case []any:
		for i, nested := range typed {
			typed[i] = normalize(nested)
		}
		return typed
	default:
		return value
	}
}
