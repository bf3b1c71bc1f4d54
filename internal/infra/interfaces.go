package infra

import "context"

type UserClientInterface interface {
	GetUser(ctx context.Context, id uint64) (*UserInfo, error)
}

type CatalogClientInterface interface {
	GetBook(ctx context.Context, id uint64) (*BookInfo, error)
}

type CartClientInterface interface {
	ClearCart(ctx context.Context, userID uint64) error
}

var (
	_ UserClientInterface    = (*UserClient)(nil)
	_ CatalogClientInterface = (*CatalogClient)(nil)
	_ CartClientInterface    = (*CartClient)(nil)
)
