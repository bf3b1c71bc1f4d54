package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"orders-service/internal/config"
)

type UserInfo struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserClient struct {
	*serviceClient
}

// NewUserClient fails when no base URL is configured: orders cannot be created without the users service.
func NewUserClient(cfg config.ServiceConfig, timeout time.Duration) (*UserClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("USERS_SERVICE_BASE_URL is not configured")
	}
	return &UserClient{serviceClient: newServiceClient("users", cfg, timeout)}, nil
}

func (c *UserClient) GetUser(ctx context.Context, id uint64) (*UserInfo, error) {
	var u UserInfo
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}
