package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBook_String(t *testing.T) {
	b := Book{ISBN: "195153448", Title: "Classical Mythology"}
	require.Equal(t, "Classical Mythology", b.String())
}

func TestBook_DecreaseQuantity(t *testing.T) {
	b := Book{Quantity: 10}
	b.DecreaseQuantity(3)
	require.Equal(t, 7, b.Quantity)

	// no clamp on the in-memory counter
	b.DecreaseQuantity(9)
	require.Equal(t, -2, b.Quantity)
}

func TestBook_InStock(t *testing.T) {
	b := Book{Quantity: 2}
	require.True(t, b.InStock(2))
	require.False(t, b.InStock(3))
	require.False(t, b.InStock(0))
}

func TestAverageRate(t *testing.T) {
	require.Zero(t, AverageRate(nil))
	require.InDelta(t, 4.0, AverageRate([]ReviewRating{{Rate: 5}, {Rate: 3}}), 0.0001)
}

func TestParseLineKind(t *testing.T) {
	require.Equal(t, LineRent, ParseLineKind("rent"))
	require.Equal(t, LineBuy, ParseLineKind("buy"))
	require.Equal(t, LineBuy, ParseLineKind(""))
}
