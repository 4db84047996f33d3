package service

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/stretchr/testify/require"
)

func TestConfirmationBody(t *testing.T) {
	customer := &models.Customer{
		FirstName: "John", LastName: "Doe",
		Address1: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701",
	}
	receipt := &Receipt{
		TransactionID: "tx-42",
		Cart: &models.Cart{
			Lines: []models.CartLine{{
				Item: models.OrderItem{Quantity: 2},
				Book: models.Book{Title: "Zen", Price: 20},
			}},
			Rentals: []models.RentLine{{
				Item: models.RentItem{Quantity: 1},
				Book: models.Book{Title: "Animal Farm", Price: 9},
			}},
		},
	}

	body := ConfirmationBody(customer, receipt)
	require.Contains(t, body, "Hi John,")
	require.Contains(t, body, "Transaction: tx-42")
	require.Contains(t, body, "2 x Zen  $40")
	require.Contains(t, body, "1 x Animal Farm  (rental)")
	require.Contains(t, body, "Total: $40")
	require.Contains(t, body, "Springfield, IL 62701")
	require.NotContains(t, body, "\n  \n")
}

func TestMailer_GivesUpWhenContextEnds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	m := NewMailer(host, port, "", "", "orders@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = m.OrderConfirmed(ctx, &models.Customer{FirstName: "John", Email: "john@example.com"}, &Receipt{TransactionID: "tx-1", Cart: &models.Cart{}})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}
