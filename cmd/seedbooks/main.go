// Command seedbooks imports catalog entries by ISBN.
//
//	seedbooks -price 12 -quantity 10 0195153448 0002005018
//
// Metadata comes from Google Books and covers from Open Library. Covers are
// copied to S3 when AWS_S3_BUCKET is set. ISBNs already in the catalog are skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/onestopbooks/config"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/kevinaaaquil/onestopbooks/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type importer struct {
	catalog *service.Catalog
	meta    *service.MetadataClient
	thumbs  service.ThumbnailStore // nil keeps the Open Library URL
}

type result int

const (
	imported result = iota
	skipped
)

// importISBN adds one book. Existing ISBNs are left alone.
func (im *importer) importISBN(ctx context.Context, isbn string, price int64, quantity int) (result, error) {
	logger := zerolog.Ctx(ctx).With().Str("isbn", isbn).Logger()

	meta, err := im.meta.LookupISBN(ctx, isbn)
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", isbn, err)
	}
	if _, err := im.catalog.Book(ctx, meta.ISBN); err == nil {
		return skipped, nil
	} else if !errors.Is(err, service.ErrBookNotFound) {
		return 0, err
	}

	in := models.BookInput{
		ISBN:         meta.ISBN,
		Title:        truncate(meta.Title, 100),
		Authors:      truncate(meta.Authors, 100),
		YearPublic:   meta.YearPublic,
		Publisher:    truncate(meta.Publisher, 100),
		ThumbnailURL: meta.CoverURL,
		Price:        price,
		Quantity:     quantity,
	}
	if im.thumbs != nil && meta.CoverURL != "" {
		image, contentType, err := im.meta.FetchCover(ctx, meta.CoverURL)
		if err != nil {
			logger.Warn().Err(err).Msg("cover download failed; keeping remote URL")
		} else if key, err := im.thumbs.PutThumbnail(ctx, meta.ISBN, image, contentType); err != nil {
			logger.Warn().Err(err).Msg("cover upload failed; keeping remote URL")
		} else {
			in.ThumbnailKey = key
			in.ThumbnailURL = "/thumbnails/" + meta.ISBN
		}
	}

	if _, err := im.catalog.AddBook(ctx, in); err != nil {
		if in.ThumbnailKey != "" {
			if derr := im.thumbs.DeleteThumbnail(ctx, in.ThumbnailKey); derr != nil {
				logger.Warn().Err(derr).Str("key", in.ThumbnailKey).Msg("orphaned cover not removed")
			}
		}
		if errors.Is(err, service.ErrBookExists) {
			return skipped, nil
		}
		return 0, fmt.Errorf("add %s: %w", isbn, err)
	}
	logger.Info().Str("title", in.Title).Msg("imported")
	return imported, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func main() {
	price := flag.Int64("price", 10, "price in whole currency units")
	quantity := flag.Int("quantity", 5, "copies in stock")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: seedbooks [-price N] [-quantity N] ISBN...")
		os.Exit(2)
	}

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.DefaultContextLogger = &log.Logger

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb")
	}
	defer db.Disconnect(context.Background())
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb indexes")
	}

	im := &importer{
		catalog: service.NewCatalog(db, nil, cfg.BargainPrice),
		meta:    service.NewMetadataClient(),
	}
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal().Err(err).Msg("s3")
		}
		im.thumbs = s3Service
	}

	var added, existing, failed int
	for _, isbn := range flag.Args() {
		res, err := im.importISBN(ctx, isbn, *price, *quantity)
		switch {
		case err != nil:
			failed++
			log.Error().Err(err).Str("isbn", isbn).Msg("import failed")
		case res == skipped:
			existing++
		default:
			added++
		}
	}
	log.Info().Int("imported", added).Int("skipped", existing).Int("failed", failed).Msg("done")
	if failed > 0 {
		os.Exit(1)
	}
}
