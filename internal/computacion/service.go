package computacion

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lelo88/computacion-api-golang/internal/logging"
)

// Errores de dominio (no HTTP). El handler los traduce a status codes.
var (
	ErrorInvalidInput = errors.New("invalid input")
	ErrorNotFound     = errors.New("document not found")
	ErrorUnavailable  = errors.New("store unavailable")
)

// Service ejecuta una operación contra el store por llamada.
type Service struct {
	store Store
}

// NewService crea un service de computacion.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// withConn toma una conexión, corre operation y la libera siempre,
// incluso si operation falla o entra en pánico.
func (service *Service) withConn(ctx context.Context, operation func(conn Conn) error) error {
	conn, err := service.store.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrorUnavailable, err)
	}
	defer conn.Release(ctx)

	return operation(conn)
}

// List devuelve todos los documentos. Nunca devuelve nil sin error.
func (service *Service) List(ctx context.Context) ([]Document, error) {
	var documents []Document
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		documents, err = conn.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if documents == nil {
		documents = []Document{}
	}
	return documents, nil
}

// Get busca por codigo.
func (service *Service) Get(ctx context.Context, codigo int64) (Document, error) {
	var document Document
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		document, err = conn.FindOne(ctx, codigo)
		return err
	})
	return document, err
}

// SearchByNombre busca por patrón sin distinguir mayúsculas.
// Sin resultados devuelve ErrorNotFound.
func (service *Service) SearchByNombre(ctx context.Context, pattern string) ([]Document, error) {
	return service.search(ctx, func(conn Conn) ([]Document, error) {
		return conn.FindByNombre(ctx, pattern)
	})
}

// SearchByPrecio devuelve los documentos con precio >= minimo.
// Sin resultados devuelve ErrorNotFound.
func (service *Service) SearchByPrecio(ctx context.Context, minimo int64) ([]Document, error) {
	return service.search(ctx, func(conn Conn) ([]Document, error) {
		return conn.FindByPrecio(ctx, minimo)
	})
}

func (service *Service) search(ctx context.Context, find func(conn Conn) ([]Document, error)) ([]Document, error) {
	var documents []Document
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		documents, err = find(conn)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, ErrorNotFound
	}
	return documents, nil
}

// Create inserta el documento tal cual.
func (service *Service) Create(ctx context.Context, document Document) (Document, error) {
	if len(document) == 0 {
		return nil, ErrorInvalidInput
	}

	var created Document
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		created, err = conn.InsertOne(ctx, document)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Interface(FieldCodigo, document[FieldCodigo]).
		Msg("objeto creado")
	return created, nil
}

// Update hace merge de fields sobre el documento con ese codigo.
// No verifica que exista: si no hay coincidencia no cambia nada y devuelve fields igual.
func (service *Service) Update(ctx context.Context, codigo int64, fields Document) (Document, error) {
	if len(fields) == 0 {
		return nil, ErrorInvalidInput
	}

	var matched bool
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		matched, err = conn.UpdateOne(ctx, codigo, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int64(FieldCodigo, codigo).
		Bool("matched", matched).
		Msg("objeto modificado")
	return fields, nil
}

// UpdatePrecio cambia solo el precio.
// El conteo de coincidencias del update decide el ErrorNotFound, sin una lectura previa.
func (service *Service) UpdatePrecio(ctx context.Context, codigo int64, precio any) error {
	var matched bool
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		matched, err = conn.UpdateOne(ctx, codigo, Document{FieldPrecio: precio})
		return err
	})
	if err != nil {
		return err
	}
	if !matched {
		return ErrorNotFound
	}

	logging.FromContext(ctx).Info().
		Int64(FieldCodigo, codigo).
		Interface(FieldPrecio, precio).
		Msg("precio modificado")
	return nil
}

// Delete elimina un documento con ese codigo.
func (service *Service) Delete(ctx context.Context, codigo int64) error {
	var deleted bool
	err := service.withConn(ctx, func(conn Conn) error {
		var err error
		deleted, err = conn.DeleteOne(ctx, codigo)
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return ErrorNotFound
	}

	logging.FromContext(ctx).Info().
		Int64(FieldCodigo, codigo).
		Msg("objeto eliminado")
	return nil
}
