package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Accounts handles signup and credential checks.
type Accounts struct {
	store store.AccountStore
	now   func() time.Time
}

func NewAccounts(s store.AccountStore) *Accounts {
	return &Accounts{store: s, now: time.Now}
}

// Signup creates an account and its customer profile. Validation problems are
// returned as FormErrors, joined with ErrPasswordMismatch or ErrUsernameTaken
// when those apply.
func (a *Accounts) Signup(ctx context.Context, form models.SignupForm) (*models.User, *models.Customer, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(strings.ToLower(form.Email))
	if err := validateForm(form); err != nil {
		return nil, nil, err
	}
	if form.Password1 != form.Password2 {
		return nil, nil, errors.Join(ErrPasswordMismatch, FormErrors{"password2": "The two password fields didn't match."})
	}
	taken := errors.Join(ErrUsernameTaken, FormErrors{"username": "A user with that username already exists."})
	existing, err := a.store.UserByUsername(ctx, form.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, nil, taken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  form.Username,
		Password:  string(hash),
		CreatedAt: a.now().UTC(),
	}
	user.ID, err = a.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, nil, taken
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	customer := &models.Customer{
		UserID:      user.ID,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
		Address1:    form.Address1,
		Address2:    form.Address2,
		City:        form.City,
		State:       form.State,
		ZipCode:     form.ZipCode,
	}
	customer.ID, err = a.store.CreateCustomer(ctx, customer)
	if err != nil {
		if derr := a.store.DeleteUser(ctx, user.ID); derr != nil {
			zerolog.Ctx(ctx).Error().Err(derr).Str("userId", user.ID.Hex()).Msg("remove user after failed customer insert")
		}
		return nil, nil, fmt.Errorf("create customer: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("username", user.Username).Msg("account created")
	return user, customer, nil
}

// Login returns the account when the credentials match, ErrInvalidCredentials otherwise.
func (a *Accounts) Login(ctx context.Context, form models.LoginForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	if err := validateForm(form); err != nil {
		return nil, err
	}
	user, err := a.store.UserByUsername(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Customer returns the profile linked to an account or ErrNoCustomer.
func (a *Accounts) Customer(ctx context.Context, userID primitive.ObjectID) (*models.Customer, error) {
	c, err := a.store.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if c == nil {
		return nil, ErrNoCustomer
	}
	return c, nil
}
