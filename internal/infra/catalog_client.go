package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"orders-service/internal/config"
)

// BookInfo is the catalog's view of a book. Stock is nil when the catalog does not track it.
type BookInfo struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Stock *int64 `json:"stock,omitempty"`
}

type CatalogClient struct {
	*serviceClient
}

func NewCatalogClient(cfg config.ServiceConfig, timeout time.Duration) (*CatalogClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BOOKS_SERVICE_BASE_URL is not configured")
	}
	return &CatalogClient{serviceClient: newServiceClient("books", cfg, timeout)}, nil
}

func (c *CatalogClient) GetBook(ctx context.Context, id uint64) (*BookInfo, error) {
	var b BookInfo
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), &b); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		b.ID = id
	}
	return &b, nil
}
