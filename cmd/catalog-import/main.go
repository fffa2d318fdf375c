// Command catalog-import loads a gzipped JSON-lines product feed into the
// catalog table. Each line is one product; rows are upserted by id, so the
// tool can be re-run on a fresh feed export.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lebonpanier/boutique-api/internal/domain/money"
	"github.com/lebonpanier/boutique-api/internal/domain/product"
	"github.com/lebonpanier/boutique-api/internal/storage/postgres"
)

const progressEvery = 10_000

// feedProduct is one line of the feed file.
type feedProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Stock    int             `json:"stock"`
	Active   bool            `json:"active"`
}

func main() {
	var (
		feedPath    string
		databaseURL string
		workers     int
	)

	flag.StringVar(&feedPath, "feed", "catalog.jsonl.gz", "gzipped JSON-lines product feed")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 8, "concurrent upsert workers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, feedPath, databaseURL, workers); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, feedPath, databaseURL string, workers int) error {
	f, err := os.Open(feedPath)
	if err != nil {
		return errors.Wrapf(err, "open feed %s", feedPath)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", feedPath)
	}
	defer gz.Close()

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	repo := postgres.NewProductRepository(pool)

	rows := make(chan product.Product, workers*4)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for p := range rows {
				if err := repo.Upsert(ctx, p); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(rows)
		return readFeed(ctx, gz, rows)
	})

	return g.Wait()
}

// readFeed streams the decompressed feed line by line, validating each row
// before handing it to the upsert workers. A malformed line aborts the import
// so a broken export does not half-load.
func readFeed(ctx context.Context, gz *pgzip.Reader, rows chan<- product.Product) error {
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line int
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var fp feedProduct
		if err := json.Unmarshal(raw, &fp); err != nil {
			return errors.Wrapf(err, "parse feed line %d", line)
		}

		p, err := toProduct(fp)
		if err != nil {
			return errors.Wrapf(err, "feed line %d", line)
		}

		select {
		case rows <- p:
		case <-ctx.Done():
			return ctx.Err()
		}

		if line%progressEvery == 0 {
			slog.Info("import progress", slog.Int("lines", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read feed")
	}

	slog.Info("feed read complete", slog.Int("lines", line))
	return nil
}

func toProduct(fp feedProduct) (product.Product, error) {
	if fp.ID == "" {
		return product.Product{}, errors.New("missing product id")
	}
	if fp.Name == "" {
		return product.Product{}, errors.Errorf("product %q: missing name", fp.ID)
	}
	if fp.Stock < 0 {
		return product.Product{}, errors.Errorf("product %q: negative stock %d", fp.ID, fp.Stock)
	}

	currency := fp.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	price, err := money.New(fp.Price, currency)
	if err != nil {
		return product.Product{}, errors.Wrapf(err, "product %q price", fp.ID)
	}

	return product.Product{
		ID:     fp.ID,
		Name:   fp.Name,
		Slug:   fp.Slug,
		Price:  price,
		Stock:  fp.Stock,
		Active: fp.Active,
	}, nil
}
