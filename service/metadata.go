package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	googleBooksBase = "https://www.googleapis.com/books/v1/volumes"
	openLibraryBase = "https://covers.openlibrary.org"
	maxCoverBytes   = 5 << 20
)

var ErrNoVolume = errors.New("no volume found for isbn")

// googleBooksVolumesResp is the response from GET /volumes?q=isbn:...
type googleBooksVolumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Subtitle            string   `json:"subtitle"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// BookMetadata is what a lookup contributes to a catalog entry.
type BookMetadata struct {
	ISBN       string
	Title      string
	Authors    string
	Publisher  string
	YearPublic int
	CoverURL   string
}

// MetadataClient looks books up on Google Books and their covers on Open Library.
type MetadataClient struct {
	HTTP      *http.Client
	BooksURL  string
	CoversURL string
}

func NewMetadataClient() *MetadataClient {
	return &MetadataClient{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		BooksURL:  googleBooksBase,
		CoversURL: openLibraryBase,
	}
}

// LookupISBN fetches metadata for an ISBN. Hyphens are ignored.
func (c *MetadataClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = cleanISBN(isbn)
	if isbn == "" {
		return nil, errors.New("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BooksURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data googleBooksVolumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoVolume, isbn)
	}
	vi := data.Items[0].VolumeInfo
	meta := &BookMetadata{
		ISBN:       isbn,
		Title:      vi.Title,
		Authors:    strings.Join(vi.Authors, ", "),
		Publisher:  vi.Publisher,
		YearPublic: publishedYear(vi.PublishedDate),
	}
	if vi.Subtitle != "" {
		meta.Title = meta.Title + ": " + vi.Subtitle
	}
	// Open Library covers need no captcha, Google image links often do.
	meta.CoverURL = c.CoversURL + "/b/isbn/" + url.PathEscape(isbn) + "-M.jpg"
	return meta, nil
}

// FetchCover downloads an image. Returns body and Content-Type.
func (c *MetadataClient) FetchCover(ctx context.Context, coverURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover URL returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/jpeg"
	}
	return body, ct, nil
}

func cleanISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}

// publishedYear reads the year out of "2004", "2004-05" or "2004-05-01".
func publishedYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
