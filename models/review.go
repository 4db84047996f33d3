package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRating struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	BookID     primitive.ObjectID `bson:"bookId" json:"bookId"`
	Author     string             `bson:"author" json:"author"` // customer display name at time of review
	Subject    string             `bson:"subject" json:"subject"`
	Review     string             `bson:"review" json:"review"`
	Rate       int                `bson:"rate" json:"rate"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type ReviewForm struct {
	Rate    int    `form:"rate" validate:"required,min=1,max=5"`
	Subject string `form:"subject" validate:"max=100"`
	Review  string `form:"review" validate:"max=500"`
}

// AverageRate returns the mean rate, or 0 when there are no reviews.
func AverageRate(reviews []ReviewRating) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rate
	}
	return float64(sum) / float64(len(reviews))
}
