package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	connectMongo = mongo.Connect
	pingMongo    = func(ctx context.Context, client *mongo.Client) error {
		return client.Ping(ctx, readpref.Primary())
	}
	disconnectMongo = func(ctx context.Context, client *mongo.Client) error {
		return client.Disconnect(ctx)
	}
)

// NewMongoClient conecta a MongoDB y verifica el primario.
// El *mongo.Client mantiene su propio pool; se comparte entre requests.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	// Subdocumentos como mapas, para que salgan como objetos en el JSON de respuesta.
	clientOptions := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := connectMongo(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := pingMongo(ctx, client); err != nil {
		_ = disconnectMongo(ctx, client)
		return nil, err
	}

	return client, nil
}

// CloseMongoClient libera el pool del cliente con un timeout acotado.
func CloseMongoClient(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), connectTimeout)
	defer cancel()

	return disconnectMongo(ctx, client)
}
