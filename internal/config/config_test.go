package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MYSQL_USER", "orders")
	t.Setenv("MYSQL_HOST", "localhost")
	t.Setenv("MYSQL_DATABASE", "orders")
	t.Setenv("USERS_SERVICE_BASE_URL", "http://users:8000")
	t.Setenv("BOOKS_SERVICE_BASE_URL", "http://books:8000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("CART_SERVICE_BASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8008", cfg.App.Port)
	assert.Equal(t, "none", cfg.App.TraceExporter)
	assert.Equal(t, "3306", cfg.MySQL.Port)
	assert.Equal(t, "order.exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2*time.Second, cfg.CartTimeout)
	assert.Equal(t, 4, cfg.CatalogConcurrency)
	assert.Empty(t, cfg.Cart.BaseURL)
}

func TestLoad_MissingHardDependency(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOKS_SERVICE_BASE_URL", "")

	cfg, err := Load("")
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKS_SERVICE_BASE_URL")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	setRequired(t)

	_, err := Load("does-not-exist.env")
	assert.NoError(t, err)
}

func TestMySQLConfig_DSN(t *testing.T) {
	c := MySQLConfig{User: "u", Password: "p", Host: "db", Port: "3306", Database: "orders"}
	assert.Equal(t, "u:p@tcp(db:3306)/orders?charset=utf8mb4&parseTime=True&loc=UTC", c.DSN())
}
