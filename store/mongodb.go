package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInsufficientStock is returned when a decrement would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotFound is returned by updates that matched nothing.
	ErrNotFound = errors.New("not found")
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Customers() *mongo.Collection {
	return db.Database.Collection("customers")
}

func (db *DB) Orders() *mongo.Collection {
	return db.Database.Collection("orders")
}

func (db *DB) OrderItemsCollection() *mongo.Collection {
	return db.Database.Collection("order_items")
}

func (db *DB) RentItemsCollection() *mongo.Collection {
	return db.Database.Collection("rent_items")
}

func (db *DB) Reviews() *mongo.Collection {
	return db.Database.Collection("reviews")
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plan := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{db.Books(), []mongo.IndexModel{
			unique(bson.D{{Key: "isbn", Value: 1}}),
			{Keys: bson.D{{Key: "price", Value: 1}}},
		}},
		{db.Users(), []mongo.IndexModel{unique(bson.D{{Key: "username", Value: 1}})}},
		{db.Customers(), []mongo.IndexModel{unique(bson.D{{Key: "userId", Value: 1}})}},
		{db.Orders(), []mongo.IndexModel{{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "complete", Value: 1}}}}},
		{db.OrderItemsCollection(), []mongo.IndexModel{unique(bson.D{{Key: "orderId", Value: 1}, {Key: "bookId", Value: 1}})}},
		{db.RentItemsCollection(), []mongo.IndexModel{unique(bson.D{{Key: "orderId", Value: 1}, {Key: "bookId", Value: 1}})}},
		{db.Reviews(), []mongo.IndexModel{{Keys: bson.D{{Key: "bookId", Value: 1}, {Key: "createdAt", Value: -1}}}}},
	}
	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

func insertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
