package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the authentication account. Shipping details live on the linked Customer.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Customer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	FirstName   string             `bson:"firstName" json:"firstName"`
	LastName    string             `bson:"lastName" json:"lastName"`
	Email       string             `bson:"email" json:"email"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address1    string             `bson:"address1" json:"address1"`
	Address2    string             `bson:"address2,omitempty" json:"address2,omitempty"`
	City        string             `bson:"city" json:"city"`
	State       string             `bson:"state" json:"state"`
	ZipCode     string             `bson:"zipCode" json:"zipCode"`
}

func (c Customer) String() string { return c.FirstName + " " + c.LastName }

// SignupForm carries the account and shipping profile fields of the signup page.
type SignupForm struct {
	Username    string `form:"username" validate:"required,max=150"`
	Password1   string `form:"password1" validate:"required,min=8"`
	Password2   string `form:"password2" validate:"required"`
	FirstName   string `form:"first_name" validate:"required,max=30"`
	LastName    string `form:"last_name" validate:"required,max=30"`
	Email       string `form:"email" validate:"required,email,max=254"`
	PhoneNumber string `form:"phone_number" validate:"omitempty,numeric,max=15"`
	Address1    string `form:"address_1" validate:"required,max=128"`
	Address2    string `form:"address_2" validate:"omitempty,max=128"`
	City        string `form:"city" validate:"required,max=128"`
	State       string `form:"state" validate:"required,max=128"`
	ZipCode     string `form:"zip_code" validate:"required,len=5,numeric"`
}

type LoginForm struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
