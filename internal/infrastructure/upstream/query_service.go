package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"edge/internal/domain/entity"
	"edge/internal/domain/repository"
	"edge/internal/infrastructure/metrics"
)

type QueryServiceClient struct {
	url         string
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// NewQueryServiceClient reads at most maxBodySize bytes of any upstream response.
func NewQueryServiceClient(url string, timeout time.Duration, maxBodySize int64, logger *slog.Logger) repository.QueryGenerator {
	return &QueryServiceClient{
		url:         url,
		client:      &http.Client{Timeout: timeout},
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

func (c *QueryServiceClient) Generate(ctx context.Context, query string) (entity.UpstreamResponse, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpstreamDuration(time.Since(start))
	}()

	jsonData, err := json.Marshal(entity.GenerateRequest{Query: query})
	if err != nil {
		metrics.IncError("upstream", "marshal_request")
		return entity.UpstreamResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		metrics.IncError("upstream", "create_request")
		return entity.UpstreamResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncUpstreamRequest("unavailable")
		return entity.UpstreamResponse{}, &entity.UpstreamUnavailableError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close query service body", "err", err)
		}
	}()

	// one byte past the limit tells a body that fits from one that was cut
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		// the connection broke or timed out mid-body
		metrics.IncUpstreamRequest("unavailable")
		return entity.UpstreamResponse{}, &entity.UpstreamUnavailableError{Err: fmt.Errorf("read response: %w", err)}
	}
	truncated := int64(len(body)) > c.maxBodySize
	if truncated {
		body = body[:c.maxBodySize]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncUpstreamRequest("http_error")
		return entity.UpstreamResponse{}, &entity.UpstreamStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Truncated:  truncated,
		}
	}

	if truncated {
		metrics.IncUpstreamRequest("body_too_large")
		return entity.UpstreamResponse{}, fmt.Errorf("%w: response exceeds %d bytes", entity.ErrUpstreamBodyTooLarge, c.maxBodySize)
	}

	if !json.Valid(body) {
		metrics.IncUpstreamRequest("invalid_body")
		return entity.UpstreamResponse{}, fmt.Errorf("%w: response is not valid JSON", entity.ErrUpstream)
	}

	metrics.IncUpstreamRequest("ok")
	return entity.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(body),
	}, nil
}
