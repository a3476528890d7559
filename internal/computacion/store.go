package computacion

import "context"

// Store es el gateway al store de documentos.
// Entrega conexiones de un pool con alcance de un request.
type Store interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
}

// Conn es una conexión tomada del pool.
// Quien la obtiene debe llamar Release exactamente una vez.
type Conn interface {
	FindAll(ctx context.Context) ([]Document, error)
	// FindOne devuelve ErrorNotFound si ningún documento tiene ese codigo.
	FindOne(ctx context.Context, codigo int64) (Document, error)
	FindByNombre(ctx context.Context, pattern string) ([]Document, error)
	FindByPrecio(ctx context.Context, minimo int64) ([]Document, error)
	// InsertOne devuelve el documento guardado con su _id.
	InsertOne(ctx context.Context, document Document) (Document, error)
	// UpdateOne hace merge de fields en el primer documento con ese codigo.
	UpdateOne(ctx context.Context, codigo int64, fields Document) (matched bool, err error)
	DeleteOne(ctx context.Context, codigo int64) (deleted bool, err error)
	Release(ctx context.Context)
}
