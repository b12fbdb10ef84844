package transport

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

type failingDoer struct {
	err error
}

func (d *failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}

func TestDo_BuffersResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "payload")
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/key", nil)
	require.NoError(t, err)

	resp, err := New(nil, 5*time.Second).Do(req)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"abc123"`, resp.Header.Get("ETag"))
	assert.Equal(t, []byte("payload"), resp.Body)
}

func TestDo_NetworkFailureIsRetryable(t *testing.T) {
	client := New(&failingDoer{err: fmt.Errorf("dial tcp: connection refused")}, 0)

	req, err := http.NewRequest(http.MethodGet, "http://unreachable.invalid/key", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNetwork, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestDo_DefaultClientDoesNotInflateGzipBodies(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	body := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/key", nil)
	require.NoError(t, err)

	resp, err := New(nil, time.Second).Do(req)
	require.NoError(t, err)
	assert.Equal(t, body, resp.Body)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

func TestDo_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/missing", nil)
	require.NoError(t, err)

	resp, err := New(nil, time.Second).Do(req)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
