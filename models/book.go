package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ISBN         string             `bson:"isbn" json:"isbn"`
	Title        string             `bson:"title" json:"title"`
	Authors      string             `bson:"authors" json:"authors"`
	YearPublic   int                `bson:"yearPublic,omitempty" json:"yearPublic,omitempty"`
	Publisher    string             `bson:"publisher,omitempty" json:"publisher,omitempty"`
	ThumbnailURL string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	ThumbnailKey string             `bson:"thumbnailKey,omitempty" json:"-"` // object key in S3
	Price        int64              `bson:"price" json:"price"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (b Book) String() string { return b.Title }

// DecreaseQuantity lowers the in-memory stock counter by n. It does not clamp at
// zero; persisted decrements go through the store, which refuses to oversell.
func (b *Book) DecreaseQuantity(n int) {
	b.Quantity -= n
}

// InStock reports whether n copies can be taken from the current stock.
func (b Book) InStock(n int) bool {
	return n > 0 && b.Quantity >= n
}

// BookInput is the validated shape used to create a catalog entry. Field limits
// mirror the original schema.
type BookInput struct {
	ISBN         string `validate:"required,max=30"`
	Title        string `validate:"required,max=100"`
	Authors      string `validate:"required,max=100"`
	YearPublic   int    `validate:"omitempty,gte=0,lte=9999"`
	Publisher    string `validate:"omitempty,max=100"`
	ThumbnailURL string `validate:"omitempty,uri,max=512"`
	ThumbnailKey string
	Price        int64 `validate:"gte=0"`
	Quantity     int   `validate:"gte=0"`
}
