package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"orders-service/internal/infra"
	"orders-service/internal/metrics"
)

type ItemRequest struct {
	BookID   uint64
	Quantity int64
}

// InventoryResult holds every problem found in one pass. Books only contains lines that passed;
// with duplicate book ids the last passing line wins and quantities are not merged.
type InventoryResult struct {
	Valid  bool
	Errors []string
	Books  map[uint64]infra.BookInfo
}

type InventoryValidator struct {
	catalog     infra.CatalogClientInterface
	metrics     *metrics.Metrics
	concurrency int
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewInventoryValidator(catalog infra.CatalogClientInterface, concurrency int, m *metrics.Metrics) *InventoryValidator {
	if concurrency < 1 {
		concurrency = 1
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &InventoryValidator{catalog: catalog, concurrency: concurrency, metrics: m}
}

func (v *InventoryValidator) SetRedisClient(client *redis.Client, ttl time.Duration) {
	v.redisClient = client
	v.cacheTTL = ttl
}

type bookLookup struct {
	book *infra.BookInfo
	err  error
}

func (v *InventoryValidator) Validate(ctx context.Context, items []ItemRequest) InventoryResult {
	lookups := make([]bookLookup, len(items))

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, item := range items {
		if item.BookID == 0 {
			continue
		}
		g.Go(func() error {
			book, err := v.lookupBook(ctx, item.BookID)
			lookups[i] = bookLookup{book: book, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := InventoryResult{Books: make(map[uint64]infra.BookInfo, len(items))}
	for i, item := range items {
		if item.BookID == 0 {
			result.Errors = append(result.Errors, "Missing book_id in item")
			continue
		}

		l := lookups[i]
		switch {
		case l.err != nil || l.book == nil:
			if l.err != nil && !errors.Is(l.err, infra.ErrNotFound) {
				zerolog.Ctx(ctx).Warn().Err(l.err).Uint64("book_id", item.BookID).Msg("catalog lookup failed")
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Book with ID %d does not exist", item.BookID))
		case l.book.Stock != nil && *l.book.Stock < item.Quantity:
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Insufficient stock for book ID %d. Available: %d, Requested: %d",
				item.BookID, *l.book.Stock, item.Quantity))
		default:
			result.Books[item.BookID] = *l.book
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// lookupBook always asks the catalog, so stock is never older than the request. Redis only keeps
// the last known title, which fills in for a live response that carries none.
func (v *InventoryValidator) lookupBook(ctx context.Context, bookID uint64) (*infra.BookInfo, error) {
	book, err := v.catalog.GetBook(ctx, bookID)
	if err != nil || book == nil || v.redisClient == nil {
		return book, err
	}

	cacheKey := fmt.Sprintf("book:%d:title", bookID)
	if book.Title != "" {
		if err := v.redisClient.Set(ctx, cacheKey, book.Title, v.cacheTTL).Err(); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("key", cacheKey).Msg("book title cache write failed")
		}
		return book, nil
	}

	title, err := v.redisClient.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		v.metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
		enriched := *book
		enriched.Title = title
		return &enriched, nil
	case errors.Is(err, redis.Nil):
		v.metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
	default:
		v.metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", cacheKey).Msg("book title cache unavailable")
	}
	return book, nil
}
