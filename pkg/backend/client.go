// Package backend provides a client for the video backend's HTTP contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iconidentify/ytgrab/internal/domain"
)

const (
	fetchVideoPath    = "/fetch-video"
	downloadVideoPath = "/download-video"

	// maxErrorBody bounds how much of a failed response is read.
	maxErrorBody = 64 * 1024
)

// Config holds backend client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	UserAgent string
}

// Client talks to the metadata and download endpoints.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new backend client.
// A zero Timeout leaves requests unbounded; a zero RateLimit disables throttling.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ytgrab"
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type fetchVideoRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchVideo requests metadata for a validated video URL.
//
// Non-2xx responses yield a *domain.BackendError carrying the backend's "error"
// field (or the generic message). Network and decoding failures yield a
// *domain.TransportError.
func (c *Client) FetchVideo(ctx context.Context, videoURL string) (*domain.VideoMetadata, error) {
	const op = "fetch video"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.NewTransportError(op, err)
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(fetchVideoRequest{URL: videoURL}); err != nil {
		return nil, domain.NewTransportError(op, fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fetchVideoPath, buf)
	if err != nil {
		return nil, domain.NewTransportError(op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"op", op,
			"request_id", requestID,
			"error", err,
		)
		return nil, domain.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeBackendError(resp)
	}

	var video domain.VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, domain.NewTransportError(op, fmt.Errorf("parse video metadata: %w", err))
	}
	return &video, nil
}

func decodeBackendError(resp *http.Response) *domain.BackendError {
	be := &domain.BackendError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		be.Message = domain.GenericFetchMessage
		return be
	}

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err != nil || strings.TrimSpace(payload.Error) == "" {
		be.Message = domain.GenericFetchMessage
		return be
	}
	be.Message = payload.Error
	return be
}

// DownloadURL builds the navigable download endpoint URL for req.
// Parameters are emitted in id, format, quality order.
func (c *Client) DownloadURL(req domain.DownloadRequest) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(downloadVideoPath)
	b.WriteString("?id=")
	b.WriteString(url.QueryEscape(req.VideoID.String()))
	b.WriteString("&format=")
	b.WriteString(url.QueryEscape(req.Format.String()))
	b.WriteString("&quality=")
	b.WriteString(url.QueryEscape(req.Quality.String()))
	return b.String()
}
