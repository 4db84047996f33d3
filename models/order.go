package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order groups line items for a customer. A customer's pending (incomplete)
// order doubles as their cart.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Complete      bool               `bson:"complete" json:"complete"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// OrderItem is a purchase line.
type OrderItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID  primitive.ObjectID `bson:"orderId" json:"orderId"`
	BookID   primitive.ObjectID `bson:"bookId" json:"bookId"`
	Quantity int                `bson:"quantity" json:"quantity"`
	AddedAt  time.Time          `bson:"addedAt" json:"addedAt"`
}

// RentItem is a rental line. Rentals take stock at checkout but are not part of
// the cart total.
type RentItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID  primitive.ObjectID `bson:"orderId" json:"orderId"`
	BookID   primitive.ObjectID `bson:"bookId" json:"bookId"`
	Quantity int                `bson:"quantity" json:"quantity"`
	AddedAt  time.Time          `bson:"addedAt" json:"addedAt"`
}

// LineKind tells purchase and rental lines apart in cart forms.
type LineKind string

const (
	LineBuy  LineKind = "buy"
	LineRent LineKind = "rent"
)

func ParseLineKind(v string) LineKind {
	if LineKind(v) == LineRent {
		return LineRent
	}
	return LineBuy
}
