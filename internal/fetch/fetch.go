// Package fetch retrieves the registry documents from a license-list-data mirror.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/StinkyLord/spdx-update/internal/document"
)

// DefaultBaseURL serves https://github.com/spdx/license-list-data as raw files.
const DefaultBaseURL = "https://raw.githubusercontent.com/spdx/license-list-data"

// ErrTransport matches every *TransportError.
var ErrTransport = errors.New("transport failure")

// TransportError reports a document that could not be retrieved.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: GET %s: %v", ErrTransport, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// Client downloads documents for a given ref (tag such as "v3.24" or a branch).
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// URL returns the location of file (e.g. "licenses.json") at ref.
func (c *Client) URL(ref, file string) string {
	return c.BaseURL + "/" + ref + "/json/" + file
}

// Licenses fetches licenses.json at ref.
func (c *Client) Licenses(ctx context.Context, ref string) (document.Object, error) {
	return c.get(ctx, ref, "licenses.json")
}

// Exceptions fetches exceptions.json at ref.
func (c *Client) Exceptions(ctx context.Context, ref string) (document.Object, error) {
	return c.get(ctx, ref, "exceptions.json")
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.HTTP.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, ref, file string) (document.Object, error) {
	url := c.URL(ref, file)
	c.Logger.Debug("fetching document", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return document.Object{}, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return document.Object{}, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return document.Object{}, &TransportError{
			URL: url,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return document.Object{}, &TransportError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	doc, err := document.Decode(bytes.NewReader(data), file)
	if err != nil {
		return document.Object{}, err
	}
	c.Logger.Debug("document fetched", zap.String("file", file), zap.Int("keys", doc.Len()), zap.Int("bytes", len(data)))
	return doc, nil
}
