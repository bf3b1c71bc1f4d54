package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"orders-service/internal/config"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnavailable     = errors.New("service unavailable")
	ErrServiceDisabled = errors.New("service not configured")
)

const maxErrorBody = 512

// serviceClient is the shared transport for every collaborating service. Each call is bounded by
// the configured timeout and by the caller's context, whichever is shorter.
type serviceClient struct {
	name       string
	baseURL    string
	secret     string
	httpClient *http.Client
	tracer     trace.Tracer
}

func newServiceClient(name string, cfg config.ServiceConfig, timeout time.Duration) *serviceClient {
	return &serviceClient{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tracer: otel.Tracer("orders-service/infra"),
	}
}

func (c *serviceClient) do(ctx context.Context, method, path string, out any) error {
	ctx, span := c.tracer.Start(ctx, "call-"+c.name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	url := c.baseURL + path
	span.SetAttributes(
		attribute.String("http.url", url),
		attribute.String("http.method", method),
	)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: build request: %w", ErrUnavailable, c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", c.secret)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		zerolog.Ctx(ctx).Debug().Err(err).Str("service", c.name).Str("url", url).Msg("upstream call failed")
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, url, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	zerolog.Ctx(ctx).Debug().
		Str("service", c.name).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream call")

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: %s returned status %d: %s", ErrUnavailable, c.name, resp.StatusCode, strings.TrimSpace(string(body)))
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", ErrUnavailable, c.name, err)
	}
	if err := decodeEntity(raw, out); err != nil {
		return fmt.Errorf("%w: %s: decode body: %w", ErrUnavailable, c.name, err)
	}
	return nil
}

// decodeEntity accepts both bare objects and the {"data": {...}} envelope used across the mesh.
func decodeEntity(raw []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if trimmed := strings.TrimSpace(string(env.Data)); strings.HasPrefix(trimmed, "{") {
			raw = env.Data
		}
	}
	return json.Unmarshal(raw, out)
}
