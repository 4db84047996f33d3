package store

import (
	"context"
	"regexp"

	"github.com/kevinaaaquil/onestopbooks/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// BookByISBN returns nil, nil when no book has the ISBN.
func (db *DB) BookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"isbn": isbn}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return db.findBooks(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// sortOrder maps a listing key to a Mongo sort document. Featured order is
// insertion order, which _id preserves.
func sortOrder(key models.SortKey) bson.D {
	switch key {
	case models.SortTitlesAZ:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortAuthorsAZ:
		return bson.D{{Key: "authors", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceLH:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceHL:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case models.SortNewest:
		return bson.D{{Key: "yearPublic", Value: -1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "_id", Value: 1}}
}

// bookFilter builds the query document for a BookQuery.
func bookFilter(q models.BookQuery) bson.M {
	filter := bson.M{}
	if q.MaxPrice != nil {
		filter["price"] = bson.M{"$lte": *q.MaxPrice}
	}
	if q.Term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"authors": re},
		}
	}
	return filter
}

func (db *DB) FindBooks(ctx context.Context, q models.BookQuery) ([]models.Book, error) {
	opts := options.Find().SetSort(sortOrder(q.Sort))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return db.findBooks(ctx, bookFilter(q), opts)
}

func (db *DB) findBooks(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SampleBooks returns up to n books picked at random.
func (db *DB) SampleBooks(ctx context.Context, n int) ([]models.Book, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.M{"size": n}}}}
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// DecrementStock atomically takes n copies of a book. The update only matches
// while at least n copies remain, so concurrent checkouts cannot oversell.
func (db *DB) DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := db.Books().UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": n}},
		bson.M{"$inc": bson.M{"quantity": -n}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (db *DB) IncrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantity": n}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
