package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PendingOrder returns the customer's most recent incomplete order, or nil.
func (db *DB) PendingOrder(ctx context.Context, customerID primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := db.Orders().FindOne(ctx, bson.M{"customerId": customerID, "complete": false}, opts).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (db *DB) CreateOrder(ctx context.Context, o *models.Order) (primitive.ObjectID, error) {
	res, err := db.Orders().InsertOne(ctx, o, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, insertErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// CompleteOrder closes a pending order. It returns ErrNotFound if the order is
// missing or already complete.
func (db *DB) CompleteOrder(ctx context.Context, orderID primitive.ObjectID, transactionID string, at time.Time) error {
	res, err := db.Orders().UpdateOne(ctx,
		bson.M{"_id": orderID, "complete": false},
		bson.M{"$set": bson.M{"complete": true, "transactionId": transactionID, "completedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) OrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	cur, err := db.OrderItemsCollection().Find(ctx, bson.M{"orderId": orderID}, options.Find().SetSort(bson.M{"addedAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.OrderItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (db *DB) RentItems(ctx context.Context, orderID primitive.ObjectID) ([]models.RentItem, error) {
	cur, err := db.RentItemsCollection().Find(ctx, bson.M{"orderId": orderID}, options.Find().SetSort(bson.M{"addedAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.RentItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// addLine upserts the (order, book) line and adds n to its quantity.
func addLine(ctx context.Context, coll *mongo.Collection, orderID, bookID primitive.ObjectID, n int) error {
	_, err := coll.UpdateOne(ctx,
		bson.M{"orderId": orderID, "bookId": bookID},
		bson.M{
			"$inc":         bson.M{"quantity": n},
			"$setOnInsert": bson.M{"addedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *DB) AddOrderItem(ctx context.Context, orderID, bookID primitive.ObjectID, n int) error {
	return addLine(ctx, db.OrderItemsCollection(), orderID, bookID, n)
}

func (db *DB) AddRentItem(ctx context.Context, orderID, bookID primitive.ObjectID, n int) error {
	return addLine(ctx, db.RentItemsCollection(), orderID, bookID, n)
}

func (db *DB) RemoveOrderItem(ctx context.Context, orderID, bookID primitive.ObjectID) error {
	_, err := db.OrderItemsCollection().DeleteOne(ctx, bson.M{"orderId": orderID, "bookId": bookID})
	return err
}

func (db *DB) RemoveRentItem(ctx context.Context, orderID, bookID primitive.ObjectID) error {
	_, err := db.RentItemsCollection().DeleteOne(ctx, bson.M{"orderId": orderID, "bookId": bookID})
	return err
}
