package computacion_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/Lelo88/computacion-api-golang/internal/computacion"
)

// memoryStore es un store en memoria con la semántica de los stores reales:
// las operaciones "one" actúan sobre el primer documento por orden de inserción.
type memoryStore struct {
	mu        sync.Mutex
	documents []computacion.Document
	nextID    int

	acquired int
	released int
	down     bool
}

func (store *memoryStore) Acquire(ctx context.Context) (computacion.Conn, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.down {
		return nil, errors.New("connection refused")
	}
	store.acquired++
	return &memoryConn{store: store}, nil
}

func (store *memoryStore) Ping(ctx context.Context) error {
	if store.down {
		return errors.New("connection refused")
	}
	return nil
}

type memoryConn struct {
	store *memoryStore
}

func (conn *memoryConn) FindAll(ctx context.Context) ([]computacion.Document, error) {
	return conn.filter(func(computacion.Document) bool { return true }), nil
}

func (conn *memoryConn) FindOne(ctx context.Context, codigo int64) (computacion.Document, error) {
	documents := conn.filter(matchesCodigo(codigo))
	if len(documents) == 0 {
		return nil, computacion.ErrorNotFound
	}
	return documents[0], nil
}

func (conn *memoryConn) FindByNombre(ctx context.Context, pattern string) ([]computacion.Document, error) {
	expression, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	return conn.filter(func(document computacion.Document) bool {
		nombre, ok := document["nombre"].(string)
		return ok && expression.MatchString(nombre)
	}), nil
}

func (conn *memoryConn) FindByPrecio(ctx context.Context, minimo int64) ([]computacion.Document, error) {
	return conn.filter(func(document computacion.Document) bool {
		precio, ok := asFloat(document["precio"])
		return ok && precio >= float64(minimo)
	}), nil
}

func (conn *memoryConn) InsertOne(ctx context.Context, document computacion.Document) (computacion.Document, error) {
	conn.store.mu.Lock()
	defer conn.store.mu.Unlock()

	conn.store.nextID++
	stored := document.Clone()
	stored["_id"] = fmt.Sprintf("id-%d", conn.store.nextID)
	conn.store.documents = append(conn.store.documents, stored)
	return stored.Clone(), nil
}

func (conn *memoryConn) UpdateOne(ctx context.Context, codigo int64, fields computacion.Document) (bool, error) {
	conn.store.mu.Lock()
	defer conn.store.mu.Unlock()

	for _, document := range conn.store.documents {
		if matchesCodigo(codigo)(document) {
			for key, value := range fields {
				document[key] = value
			}
			return true, nil
		}
	}
	return false, nil
}

func (conn *memoryConn) DeleteOne(ctx context.Context, codigo int64) (bool, error) {
	conn.store.mu.Lock()
	defer conn.store.mu.Unlock()

	for i, document := range conn.store.documents {
		if matchesCodigo(codigo)(document) {
			conn.store.documents = append(conn.store.documents[:i], conn.store.documents[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (conn *memoryConn) Release(ctx context.Context) {
	conn.store.mu.Lock()
	defer conn.store.mu.Unlock()
	conn.store.released++
}

func (conn *memoryConn) filter(keep func(computacion.Document) bool) []computacion.Document {
	conn.store.mu.Lock()
	defer conn.store.mu.Unlock()

	out := []computacion.Document{}
	for _, document := range conn.store.documents {
		if keep(document) {
			out = append(out, document.Clone())
		}
	}
	return out
}

func matchesCodigo(codigo int64) func(computacion.Document) bool {
	return func(document computacion.Document) bool {
		value, ok := asFloat(document["codigo"])
		return ok && value == float64(codigo)
	}
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}
