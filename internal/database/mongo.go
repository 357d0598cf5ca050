package database

import (
	"context"
	"fmt"
	"time"

	"monitor-estoque/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// membership é o documento gravado em cada coleção
type membership struct {
	ID  string `bson:"_id"`
	URL string `bson:"url"`
}

// Mongo implementa Store sobre um banco MongoDB, uma coleção por estado
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo conecta ao MongoDB e verifica a conexão
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("URL de conexão do MongoDB vazia")
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

// Close encerra a conexão com o MongoDB
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// GetAll retorna todos os produtos de uma coleção
func (m *Mongo) GetAll(ctx context.Context, collection models.Collection) (map[string]string, error) {
	cursor, err := m.db.Collection(string(collection)).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make(map[string]string)
	for cursor.Next(ctx) {
		var doc membership
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		products[doc.ID] = doc.URL
	}
	return products, cursor.Err()
}

// Insert grava o produto na coleção (upsert pelo id)
func (m *Mongo) Insert(ctx context.Context, id, url string, collection models.Collection) error {
	_, err := m.db.Collection(string(collection)).ReplaceOne(ctx,
		bson.M{"_id": id},
		membership{ID: id, URL: url},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete remove o produto da coleção
func (m *Mongo) Delete(ctx context.Context, id string, collection models.Collection) error {
	_, err := m.db.Collection(string(collection)).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
