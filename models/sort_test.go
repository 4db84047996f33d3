package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleBooks() []Book {
	return []Book{
		{ID: primitive.NewObjectID(), ISBN: "1", Title: "Middlemarch", Authors: "George Eliot", Price: 12, YearPublic: 1871},
		{ID: primitive.NewObjectID(), ISBN: "2", Title: "Beloved", Authors: "Toni Morrison", Price: 9, YearPublic: 1987},
		{ID: primitive.NewObjectID(), ISBN: "3", Title: "Ulysses", Authors: "James Joyce", Price: 20, YearPublic: 1922},
	}
}

func isbns(books []Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ISBN
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	for _, k := range SortKeys {
		require.Equal(t, k, ParseSortKey(string(k)))
	}
	require.Equal(t, SortFeatured, ParseSortKey(""))
	require.Equal(t, SortFeatured, ParseSortKey("title"))
	require.Equal(t, SortFeatured, ParseSortKey("-price"))
}

func TestSortBooks(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortFeatured, []string{"1", "2", "3"}},
		{SortTitlesAZ, []string{"2", "1", "3"}},
		{SortAuthorsAZ, []string{"1", "3", "2"}},
		{SortPriceLH, []string{"2", "1", "3"}},
		{SortPriceHL, []string{"3", "1", "2"}},
		{SortNewest, []string{"2", "3", "1"}},
		{SortKey("authors"), []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			books := sampleBooks()
			SortBooks(books, tc.key)
			require.Equal(t, tc.want, isbns(books))
			require.ElementsMatch(t, []string{"1", "2", "3"}, isbns(books))
		})
	}
}
