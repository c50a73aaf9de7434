package jellyfin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"jtools/internal/logging"
	"jtools/internal/services"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxErrorBody = 512

// do sends one request and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, operation string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrConnectivity, component, operation, "request pacing interrupted", err)
	}

	target := c.endpointURL(endpoint, query)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, component, operation, "build request", err)
	}
	c.setHeaders(ctx, req)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrConnectivity, component, operation, fmt.Sprintf("%s %s", method, endpoint), err)
	}
	defer func() { _ = resp.Body.Close() }()

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("jellyfin request",
		logging.String("method", method),
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp, operation)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrConnectivity, component, operation, "decode response", err)
	}
	return nil
}

func statusError(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := fmt.Sprintf("server returned %d", resp.StatusCode)
	if text := strings.TrimSpace(string(body)); text != "" {
		message = fmt.Sprintf("%s: %s", message, text)
	}
	marker := services.ErrConnectivity
	if resp.StatusCode == http.StatusNotFound {
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, component, operation, message, nil)
}

func (c *Client) endpointURL(endpoint string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Authorization", c.authorization)
	req.Header.Set("Accept", "application/json")
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-Id", rid)
	}
}

func authorizationHeader(clientName, deviceName, deviceID, version string) string {
	return fmt.Sprintf(`MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q`, clientName, deviceName, deviceID, version)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func componentLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.NewNop()
	}
	return logging.NewComponentLogger(logger, component)
}
