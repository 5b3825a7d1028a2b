// Package googlebooks Google Books API客户端
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// ErrVolumeNotFound 外部目录中不存在该volume
var ErrVolumeNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "外部目录中不存在该图书")

// errBadRequest 4xx响应（查询参数问题），不计入熔断
var errBadRequest = errors.New("google books: bad request")

const breakerName = "google_books"

// Client Google Books客户端
// 出站请求经过限流和熔断，超时由http.Client控制
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient 创建客户端
func NewClient(cfg config.GoogleBooksConfig) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 40 {
		maxResults = 10
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		limiter:    rate.NewLimiter(limit, burst),
		breaker: circuitbreaker.New(breakerName, circuitbreaker.Config{
			FailureThreshold: cfg.BreakerFailures,
			Timeout:          cfg.BreakerTimeout,
			IsFailure: func(err error) bool {
				return !errors.Is(err, ErrVolumeNotFound) && !errors.Is(err, errBadRequest)
			},
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				metrics.SetBreakerState(name, int(to))
				logrus.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("熔断器状态变化")
			},
		}),
	}
}

// MaxResults 单次搜索返回数量
func (c *Client) MaxResults() int {
	return c.maxResults
}

// Search 关键词搜索（只返回图书，不含杂志）
func (c *Client) Search(ctx context.Context, query string) ([]Volume, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("printType", "books")

	var resp volumesResponse
	if err := c.get(ctx, "search", "/volumes", params, &resp); err != nil {
		return nil, err
	}

	volumes := make([]Volume, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID == "" {
			continue
		}
		volumes = append(volumes, item.normalize())
	}
	return volumes, nil
}

// GetVolume 获取单本详情，不存在时返回ErrVolumeNotFound
func (c *Client) GetVolume(ctx context.Context, volumeID string) (*Volume, error) {
	var raw rawVolume
	if err := c.get(ctx, "volume", "/volumes/"+url.PathEscape(volumeID), url.Values{}, &raw); err != nil {
		return nil, err
	}
	if raw.ID == "" {
		return nil, ErrVolumeNotFound
	}
	v := raw.normalize()
	return &v, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, dest interface{}) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.do(ctx, endpoint, dest)
	})

	switch {
	case err == nil:
		metrics.ObserveCatalogRequest(op, "success", time.Since(start).Seconds())
		return nil
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.ObserveCatalogRequest(op, "rejected", -1)
		return apperrors.ErrUpstreamError.WithCause(err)
	case errors.Is(err, ErrVolumeNotFound):
		metrics.ObserveCatalogRequest(op, "not_found", time.Since(start).Seconds())
		return ErrVolumeNotFound
	default:
		metrics.ObserveCatalogRequest(op, "failure", time.Since(start).Seconds())
		return apperrors.ErrUpstreamError.WithCause(err)
	}
}

func (c *Client) do(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrVolumeNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", errBadRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("google books: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("google books: decode response: %w", err)
	}
	return nil
}
