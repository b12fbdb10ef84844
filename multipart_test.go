package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

func TestMultipart_Lifecycle(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "big/object.bin")
	require.NoError(t, err)
	require.NotEmpty(t, session.UploadID)
	assert.Equal(t, "big/object.bin", session.Key)

	part1 := bytes.Repeat([]byte("a"), 64)
	part2 := bytes.Repeat([]byte("b"), 64)

	p, err := store.UploadPart(ctx, session.UploadID, 1, part1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.PartNumber)
	assert.NotEmpty(t, p.ETag)

	_, err = store.UploadPart(ctx, session.UploadID, 2, part2)
	require.NoError(t, err)

	md, err := store.CompleteMultipartUpload(ctx, session.UploadID)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, int64(128), md.Size)

	stored := fake.Object("big/object.bin")
	require.NotNil(t, stored)
	assert.Equal(t, append(part1, part2...), stored.Data)
}

func TestMultipart_OutOfOrderPartsAreSorted(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "sorted.bin")
	require.NoError(t, err)

	// Upload in reverse order; completion must still send parts ascending.
	_, err = store.UploadPart(ctx, session.UploadID, 3, []byte("ccc"))
	require.NoError(t, err)
	_, err = store.UploadPart(ctx, session.UploadID, 1, []byte("aaa"))
	require.NoError(t, err)
	_, err = store.UploadPart(ctx, session.UploadID, 2, []byte("bbb"))
	require.NoError(t, err)

	_, err = store.CompleteMultipartUpload(ctx, session.UploadID)
	require.NoError(t, err)

	stored := fake.Object("sorted.bin")
	require.NotNil(t, stored)
	assert.Equal(t, []byte("aaabbbccc"), stored.Data)
}

func TestMultipart_ConcurrentPartUploads(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "concurrent.bin")
	require.NoError(t, err)

	const numParts = 8
	var wg sync.WaitGroup
	errs := make([]error, numParts)
	for i := range numParts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content := bytes.Repeat([]byte{byte('a' + i)}, 16)
			_, errs[i] = store.UploadPart(ctx, session.UploadID, i+1, content)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "part %d", i+1)
	}

	_, err = store.CompleteMultipartUpload(ctx, session.UploadID)
	require.NoError(t, err)

	var want []byte
	for i := range numParts {
		want = append(want, bytes.Repeat([]byte{byte('a' + i)}, 16)...)
	}
	stored := fake.Object("concurrent.bin")
	require.NotNil(t, stored)
	assert.Equal(t, want, stored.Data)
}

func TestMultipart_UnknownUploadID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.UploadPart(ctx, "no-such-upload", 1, []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = store.CompleteMultipartUpload(ctx, "no-such-upload")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMultipart_InvalidPartNumber(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "parts.bin")
	require.NoError(t, err)

	for _, n := range []int{0, -1, 10001} {
		_, err := store.UploadPart(ctx, session.UploadID, n, []byte("x"))
		require.Error(t, err, "part number %d", n)
		assert.True(t, errors.IsInvalidInput(err))
	}
}

func TestMultipart_CompleteWithoutParts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "empty.bin")
	require.NoError(t, err)

	_, err = store.CompleteMultipartUpload(ctx, session.UploadID)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestMultipart_Abort(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	session, err := store.InitiateMultipartUpload(ctx, "aborted.bin")
	require.NoError(t, err)
	_, err = store.UploadPart(ctx, session.UploadID, 1, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.AbortMultipartUpload(ctx, session.UploadID))
	assert.Nil(t, fake.Object("aborted.bin"))

	// The session is gone, so a second abort is a no-op.
	require.NoError(t, store.AbortMultipartUpload(ctx, session.UploadID))

	_, err = store.UploadPart(ctx, session.UploadID, 2, []byte("y"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMultipart_SessionsAreIndependent(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	var sessions []*MultipartSession
	for i := range 3 {
		s, err := store.InitiateMultipartUpload(ctx, fmt.Sprintf("independent/%d.bin", i))
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	for i, s := range sessions {
		_, err := store.UploadPart(ctx, s.UploadID, 1, []byte{byte('0' + i)})
		require.NoError(t, err)
	}
	for _, s := range sessions {
		_, err := store.CompleteMultipartUpload(ctx, s.UploadID)
		require.NoError(t, err)
	}

	for i := range 3 {
		stored := fake.Object(fmt.Sprintf("independent/%d.bin", i))
		require.NotNil(t, stored)
		assert.Equal(t, []byte{byte('0' + i)}, stored.Data)
	}
}
