package service

import (
	"context"
	"testing"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store/memory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *memory.Store
	catalog  *Catalog
	accounts *Accounts
	checkout *Checkout
	reviews  *Reviews
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	catalog := NewCatalog(st, nil, 0)
	return &testEnv{
		store:    st,
		catalog:  catalog,
		accounts: NewAccounts(st),
		checkout: NewCheckout(st, catalog, nil),
		reviews:  NewReviews(st, catalog),
	}
}

func (e *testEnv) addBook(t *testing.T, isbn, title, authors string, price int64, qty int) *models.Book {
	t.Helper()
	b, err := e.catalog.AddBook(context.Background(), models.BookInput{
		ISBN:     isbn,
		Title:    title,
		Authors:  authors,
		Price:    price,
		Quantity: qty,
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) addCustomer(t *testing.T, username string) *models.Customer {
	t.Helper()
	_, c, err := e.accounts.Signup(context.Background(), validSignup(username))
	require.NoError(t, err)
	return c
}

func validSignup(username string) models.SignupForm {
	return models.SignupForm{
		Username:  username,
		Password1: "correct-horse",
		Password2: "correct-horse",
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Address1:  "1 Main St",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62701",
	}
}

func (e *testEnv) quantity(t *testing.T, isbn string) int {
	t.Helper()
	b, err := e.catalog.Book(context.Background(), isbn)
	require.NoError(t, err)
	return b.Quantity
}
