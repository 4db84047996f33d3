package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookups return nil, nil when nothing matches.

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	BookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error)
	FindBooks(ctx context.Context, q models.BookQuery) ([]models.Book, error)
	SampleBooks(ctx context.Context, n int) ([]models.Book, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, n int) error
}

type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	CreateCustomer(ctx context.Context, c *models.Customer) (primitive.ObjectID, error)
	CustomerByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Customer, error)
}

type OrderStore interface {
	PendingOrder(ctx context.Context, customerID primitive.ObjectID) (*models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) (primitive.ObjectID, error)
	CompleteOrder(ctx context.Context, orderID primitive.ObjectID, transactionID string, at time.Time) error
	OrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	RentItems(ctx context.Context, orderID primitive.ObjectID) ([]models.RentItem, error)
	AddOrderItem(ctx context.Context, orderID, bookID primitive.ObjectID, n int) error
	AddRentItem(ctx context.Context, orderID, bookID primitive.ObjectID, n int) error
	RemoveOrderItem(ctx context.Context, orderID, bookID primitive.ObjectID) error
	RemoveRentItem(ctx context.Context, orderID, bookID primitive.ObjectID) error
}

type ReviewStore interface {
	InsertReview(ctx context.Context, r *models.ReviewRating) (primitive.ObjectID, error)
	ReviewsForBook(ctx context.Context, bookID primitive.ObjectID) ([]models.ReviewRating, error)
}

// Store is everything the storefront persists.
type Store interface {
	BookStore
	AccountStore
	OrderStore
	ReviewStore
}

var _ Store = (*DB)(nil)
