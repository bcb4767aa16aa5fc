package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/StinkyLord/spdx-update/internal/document"
	"github.com/StinkyLord/spdx-update/internal/registrytest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New(baseURL, 5*time.Second, nil)
	t.Cleanup(c.Close)
	return c
}

func TestURL(t *testing.T) {
	c := New("https://mirror.example.com/spdx/", time.Second, nil)
	assert.Equal(t, "https://mirror.example.com/spdx/v3.24/json/licenses.json", c.URL("v3.24", "licenses.json"))

	c = New("", time.Second, nil)
	assert.Equal(t, DefaultBaseURL+"/main/json/exceptions.json", c.URL("main", "exceptions.json"))
}

func TestLicensesAndExceptions(t *testing.T) {
	srv := registrytest.NewServer(t)
	c := newClient(t, srv.URL)

	lic, err := c.Licenses(context.Background(), registrytest.Tag)
	require.NoError(t, err)
	version, err := lic.String("licenseListVersion")
	require.NoError(t, err)
	assert.Equal(t, "3.24", version)
	assert.Equal(t, "licenses.json", lic.Path())

	exc, err := c.Exceptions(context.Background(), registrytest.Tag)
	require.NoError(t, err)
	elems, err := exc.Objects("exceptions")
	require.NoError(t, err)
	assert.Len(t, elems, 4)

	assert.Equal(t, []string{"/v3.24/json/licenses.json", "/v3.24/json/exceptions.json"}, srv.Requests())
}

func TestNotFound(t *testing.T) {
	srv := registrytest.NewServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Licenses(context.Background(), "v0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, srv.URL+"/v0.0/json/licenses.json", te.URL)
	assert.Contains(t, err.Error(), "status 404")
}

func TestMalformedPayload(t *testing.T) {
	srv := registrytest.NewServer(t)
	srv.Set("v9.9", "licenses.json", []byte(`["not", "an", "object"]`))
	c := newClient(t, srv.URL)

	_, err := c.Licenses(context.Background(), "v9.9")
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrMalformed)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "licenses.json: is array, want object")
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url)
	_, err := c.Exceptions(context.Background(), "main")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestContextCanceled(t *testing.T) {
	srv := registrytest.NewServer(t)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Licenses(ctx, registrytest.Tag)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := New(srv.URL, 50*time.Millisecond, nil)
	t.Cleanup(c.Close)

	_, err := c.Licenses(context.Background(), "main")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}
