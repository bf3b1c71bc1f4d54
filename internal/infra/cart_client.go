package infra

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"orders-service/internal/config"
)

// CartClient talks to the cart service. Without a base URL it is disabled and every call
// returns ErrServiceDisabled.
type CartClient struct {
	client *serviceClient
}

func NewCartClient(cfg config.ServiceConfig, timeout time.Duration) *CartClient {
	if cfg.BaseURL == "" {
		log.Warn().Msg("CART_SERVICE_BASE_URL is not configured, cart clearing is disabled")
		return &CartClient{}
	}
	return &CartClient{client: newServiceClient("cart", cfg, timeout)}
}

func (c *CartClient) Enabled() bool {
	return c.client != nil
}

func (c *CartClient) ClearCart(ctx context.Context, userID uint64) error {
	if !c.Enabled() {
		return ErrServiceDisabled
	}
	return c.client.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/user/%d", userID), nil)
}
