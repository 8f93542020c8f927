// Package service contains the adapters that implement the core's backend
// ports: JSON/HTTP clients for the deployed services and in-memory fakes for
// local development and tests.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
)

// statusError reports a non-2xx response that is not a recognised condition.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// doJSON issues one JSON request and decodes the response into out (out may
// be nil for empty responses). It maps:
//
//	404                      -> ports.ErrNotFound
//	transport/5xx failures   -> *ports.UnavailableError
//	other non-2xx            -> *ports.UnavailableError wrapping statusError
func doJSON(ctx context.Context, client *http.Client, service, op, method, url string, in, out any, header http.Header) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode %s request: %w", service, op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: build %s request: %w", service, op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ports.UnavailableError{Service: service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ports.UnavailableError{
			Service: service,
			Op:      op,
			Err:     &statusError{Status: resp.StatusCode, Body: string(snippet)},
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ports.UnavailableError{
				Service: service,
				Op:      op,
				Err:     fmt.Errorf("decode response: %w", err),
			}
		}
	}
	return nil
}
