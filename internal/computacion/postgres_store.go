package computacion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// La colección se guarda como una tabla de documentos jsonb.
// _id no se guarda dentro de doc: se arma desde la columna id al leer.
const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS computacion (
			id         uuid PRIMARY KEY,
			doc        jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		);
	`
	createIndexSQL = `
		CREATE INDEX IF NOT EXISTS ix_computacion_codigo ON computacion ((doc->'codigo'));
	`

	selectDocumentSQL = `SELECT doc || jsonb_build_object('_id', id::text) FROM computacion`

	// firstByCodigoSQL replica "update/delete one": solo el primer documento por orden de inserción.
	firstByCodigoSQL = `
		SELECT id FROM computacion
		WHERE doc->'codigo' = to_jsonb($1::bigint)
		ORDER BY created_at, id
		LIMIT 1
	`
)

// pgQuerier es lo que el store usa de una conexión del pool.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore guarda la colección en PostgreSQL (jsonb).
type PostgresStore struct {
	acquire func(ctx context.Context) (pgQuerier, func(), error)
	ping    func(ctx context.Context) error
	newID   func() uuid.UUID
}

// NewPostgresStore crea el store sobre un pool ya verificado.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		acquire: func(ctx context.Context) (pgQuerier, func(), error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, nil, err
			}
			return conn, conn.Release, nil
		},
		ping:  pool.Ping,
		newID: uuid.New,
	}
}

// EnsureSchema crea la tabla y el índice por codigo si no existen.
func (store *PostgresStore) EnsureSchema(ctx context.Context) error {
	database, release, err := store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, statement := range []string{createTableSQL, createIndexSQL} {
		if _, err := database.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// Acquire implementa Store.
func (store *PostgresStore) Acquire(ctx context.Context) (Conn, error) {
	database, release, err := store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresConn{database: database, release: release, newID: store.newID}, nil
}

// Ping implementa Store.
func (store *PostgresStore) Ping(ctx context.Context) error {
	return store.ping(ctx)
}

type postgresConn struct {
	database pgQuerier
	release  func()
	newID    func() uuid.UUID
}

func (conn *postgresConn) FindAll(ctx context.Context) ([]Document, error) {
	const query = selectDocumentSQL + ` ORDER BY created_at, id`
	return conn.query(ctx, query)
}

func (conn *postgresConn) FindOne(ctx context.Context, codigo int64) (Document, error) {
	const query = selectDocumentSQL + `
		WHERE doc->'codigo' = to_jsonb($1::bigint)
		ORDER BY created_at, id
		LIMIT 1
	`

	var raw []byte
	if err := conn.database.QueryRow(ctx, query, codigo).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrorNotFound
		}
		return nil, err
	}
	return DecodeDocument(bytes.NewReader(raw))
}

// FindByNombre usa ~* (regex POSIX sin distinguir mayúsculas).
func (conn *postgresConn) FindByNombre(ctx context.Context, pattern string) ([]Document, error) {
	const query = selectDocumentSQL + `
		WHERE doc->>'nombre' ~* $1
		ORDER BY created_at, id
	`
	return conn.query(ctx, query, pattern)
}

// FindByPrecio ignora documentos cuyo precio no es numérico, igual que $gte en Mongo.
func (conn *postgresConn) FindByPrecio(ctx context.Context, minimo int64) ([]Document, error) {
	const query = selectDocumentSQL + `
		WHERE CASE WHEN jsonb_typeof(doc->'precio') = 'number'
			THEN (doc->>'precio')::numeric >= $1
			ELSE false
		END
		ORDER BY created_at, id
	`
	return conn.query(ctx, query, minimo)
}

func (conn *postgresConn) InsertOne(ctx context.Context, document Document) (Document, error) {
	const query = `INSERT INTO computacion (id, doc) VALUES ($1::uuid, $2::jsonb)`

	stored := document.Clone()
	delete(stored, FieldID)
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	id := conn.newID().String()
	if _, err := conn.database.Exec(ctx, query, id, string(payload)); err != nil {
		return nil, err
	}

	stored[FieldID] = id
	return stored, nil
}

func (conn *postgresConn) UpdateOne(ctx context.Context, codigo int64, fields Document) (bool, error) {
	const query = `
		UPDATE computacion SET doc = doc || ($2::jsonb - '_id')
		WHERE id = (` + firstByCodigoSQL + `)
	`

	payload, err := json.Marshal(fields)
	if err != nil {
		return false, err
	}

	tag, err := conn.database.Exec(ctx, query, codigo, string(payload))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (conn *postgresConn) DeleteOne(ctx context.Context, codigo int64) (bool, error) {
	const query = `DELETE FROM computacion WHERE id = (` + firstByCodigoSQL + `)`

	tag, err := conn.database.Exec(ctx, query, codigo)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Release devuelve la conexión al pool.
func (conn *postgresConn) Release(ctx context.Context) {
	conn.release()
}

func (conn *postgresConn) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := conn.database.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	documents := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		document, err := DecodeDocument(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}
