package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

func TestPresign_GeneratesSignedURL(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(t, WithClock(func() time.Time { return fixed }))

	signed, err := store.Presign(http.MethodGet, "reports/q2.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)

	query := u.Query()
	assert.Equal(t, "AWS4-HMAC-SHA256", query.Get("X-Amz-Algorithm"))
	assert.Equal(t, "20260801T120000Z", query.Get("X-Amz-Date"))
	assert.Equal(t, "900", query.Get("X-Amz-Expires"))
	assert.Equal(t, "host", query.Get("X-Amz-SignedHeaders"))
	assert.Contains(t, query.Get("X-Amz-Credential"), "20260801/us-east-1/s3/aws4_request")
	assert.Len(t, query.Get("X-Amz-Signature"), 64)
	assert.Contains(t, u.Path, "reports/q2.pdf")
}

func TestPresign_URLIsUsable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "shared/file.txt", []byte("presigned content"))
	require.NoError(t, err)

	signed, err := store.Presign(http.MethodGet, "shared/file.txt", time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(signed)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("presigned content"), body)
}

func TestPresign_ResponseOverrides(t *testing.T) {
	store, _ := newTestStore(t)

	signed, err := store.Presign(http.MethodGet, "download.bin", time.Minute,
		WithResponseContentType("application/pdf"),
		WithResponseContentDisposition(`attachment; filename="report.pdf"`))
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	query := u.Query()
	assert.Equal(t, "application/pdf", query.Get("response-content-type"))
	assert.Equal(t, `attachment; filename="report.pdf"`, query.Get("response-content-disposition"))
}

func TestPresign_Validation(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Presign("PATCH", "key", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = store.Presign(http.MethodGet, "key", 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = store.Presign(http.MethodGet, "key", 8*24*time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = store.Presign(http.MethodGet, "a/../b", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPresign_NoNetworkIO(t *testing.T) {
	store, fake := newTestStore(t)

	before := len(fake.Requests())
	_, err := store.Presign(http.MethodPut, "upload/target.bin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, before, len(fake.Requests()), "presigning must not call the provider")
}
