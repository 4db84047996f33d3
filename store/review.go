package store

import (
	"context"

	"github.com/kevinaaaquil/onestopbooks/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertReview(ctx context.Context, r *models.ReviewRating) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, r, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// ReviewsForBook lists a book's reviews, newest first.
func (db *DB) ReviewsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.ReviewRating, error) {
	cur, err := db.Reviews().Find(ctx, bson.M{"bookId": bookID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reviews []models.ReviewRating
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
