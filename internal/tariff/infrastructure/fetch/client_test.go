package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestFetchSendsDocumentHeaders(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "Mozilla/5.0", req.Header.Get("User-Agent"))
		require.Equal(t, "https://www.95598.cn/", req.Header.Get("Referer"))
		require.Equal(t, "application/pdf", req.Header.Get("Accept"))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte("%PDF-1.4"))),
			Header:     make(http.Header),
		}, nil
	})

	data, err := NewClient(WithTransport(rt)).Fetch(context.Background(), "https://www.95598.cn/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestFetchHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(WithUserAgent("tariff-test")).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 403")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariff.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	data, err := NewClient().Fetch(context.Background(), "  "+path+" ")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = NewClient().Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFetchEmptySource(t *testing.T) {
	_, err := NewClient().Fetch(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptySource)
}
