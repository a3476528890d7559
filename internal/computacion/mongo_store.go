package computacion

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoCollection es el subconjunto de *mongo.Collection que usa el store.
type mongoCollection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// mongoSession ata operaciones a una sesión del cliente y la cierra.
type mongoSession struct {
	bind func(ctx context.Context) context.Context
	end  func(ctx context.Context)
}

// MongoStore guarda la colección en MongoDB.
// Cada Acquire abre una sesión sobre el pool del cliente; Release la cierra.
type MongoStore struct {
	collection   mongoCollection
	startSession func() (mongoSession, error)
	ping         func(ctx context.Context) error
}

// NewMongoStore crea el store sobre database.computacion.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		collection: client.Database(database).Collection(CollectionName),
		startSession: func() (mongoSession, error) {
			session, err := client.StartSession()
			if err != nil {
				return mongoSession{}, err
			}
			return mongoSession{
				bind: func(ctx context.Context) context.Context {
					return mongo.NewSessionContext(ctx, session)
				},
				end: session.EndSession,
			}, nil
		},
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}
}

// Acquire implementa Store.
func (store *MongoStore) Acquire(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, err := store.startSession()
	if err != nil {
		return nil, err
	}
	return &mongoConn{collection: store.collection, session: session}, nil
}

// Ping implementa Store.
func (store *MongoStore) Ping(ctx context.Context) error {
	return store.ping(ctx)
}

type mongoConn struct {
	collection mongoCollection
	session    mongoSession
}

func codigoFilter(codigo int64) bson.M {
	return bson.M{FieldCodigo: codigo}
}

func (conn *mongoConn) FindAll(ctx context.Context) ([]Document, error) {
	return conn.find(ctx, bson.D{})
}

func (conn *mongoConn) FindOne(ctx context.Context, codigo int64) (Document, error) {
	documents, err := conn.find(ctx, codigoFilter(codigo), options.Find().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, ErrorNotFound
	}
	return documents[0], nil
}

func (conn *mongoConn) FindByNombre(ctx context.Context, pattern string) ([]Document, error) {
	return conn.find(ctx, bson.M{FieldNombre: primitive.Regex{Pattern: pattern, Options: "i"}})
}

func (conn *mongoConn) FindByPrecio(ctx context.Context, minimo int64) ([]Document, error) {
	return conn.find(ctx, bson.M{FieldPrecio: bson.M{"$gte": minimo}})
}

func (conn *mongoConn) InsertOne(ctx context.Context, document Document) (Document, error) {
	result, err := conn.collection.InsertOne(conn.session.bind(ctx), bson.M(document))
	if err != nil {
		return nil, err
	}

	created := document.Clone()
	created[FieldID] = result.InsertedID
	return created, nil
}

func (conn *mongoConn) UpdateOne(ctx context.Context, codigo int64, fields Document) (bool, error) {
	result, err := conn.collection.UpdateOne(conn.session.bind(ctx), codigoFilter(codigo), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (conn *mongoConn) DeleteOne(ctx context.Context, codigo int64) (bool, error) {
	result, err := conn.collection.DeleteOne(conn.session.bind(ctx), codigoFilter(codigo))
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Release cierra la sesión aunque el request ya se haya cancelado.
func (conn *mongoConn) Release(ctx context.Context) {
	conn.session.end(context.WithoutCancel(ctx))
}

func (conn *mongoConn) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]Document, error) {
	ctx = conn.session.bind(ctx)

	cursor, err := conn.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	// All cierra el cursor.
	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	documents := make([]Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, Document(row))
	}
	return documents, nil
}
