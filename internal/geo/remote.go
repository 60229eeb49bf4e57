package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/failure"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/retry"
)

// maxRemoteBody bounds how much of a remote response is read.
const maxRemoteBody = 1 << 20

// remoteClient wraps HTTP calls to external geo providers with a
// per-provider circuit breaker, graded retry, and a per-call timeout.
type remoteClient struct {
	http     *http.Client
	breakers *circuitbreaker.Registry
	policy   retry.Policy
	timeout  time.Duration
}

func newRemoteClient(breakers *circuitbreaker.Registry, policy retry.Policy, timeout time.Duration) *remoteClient {
	return &remoteClient{
		http:     &http.Client{Timeout: timeout},
		breakers: breakers,
		policy:   policy,
		timeout:  timeout,
	}
}

// getJSON fetches a URL and decodes the JSON body into out. The resource
// name scopes the circuit breaker, so one failing provider does not trip
// the others.
func (c *remoteClient) getJSON(ctx context.Context, resource, url string, out any) error {
	breaker := c.breakers.Get(resource)

	return retry.Do(ctx, c.policy, func(ctx context.Context, _ retry.Attempt) error {
		return breaker.Execute(ctx, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("call %s: %w", resource, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return &failure.StatusError{Code: resp.StatusCode, URL: url}
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
			if err != nil {
				return fmt.Errorf("read %s response: %w", resource, err)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode %s response: %w", resource, err)
			}
			return nil
		})
	})
}
