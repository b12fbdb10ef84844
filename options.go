// Functional options for configuring store construction and individual
// operations. These follow the functional options pattern for clean,
// composable configuration.
package objectstore

import (
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/transport"
)

// storeOptions collects the injectable capabilities applied by Option values.
type storeOptions struct {
	httpClient transport.Doer
	compressor Compressor
	sessions   SessionStore
	filesystem fs.Filesystem
	clock      func() time.Time
}

// Option is a functional option for configuring the store at construction.
type Option func(*storeOptions)

// WithHTTPClient injects a custom HTTP client. Tests use this to supply
// fakes that never touch the network; production callers can configure
// proxies, TLS, or connection pooling.
func WithHTTPClient(client transport.Doer) Option {
	return func(o *storeOptions) {
		o.httpClient = client
	}
}

// WithCompressor replaces the default gzip compressor.
func WithCompressor(compressor Compressor) Option {
	return func(o *storeOptions) {
		o.compressor = compressor
	}
}

// WithSessionStore replaces the in-memory multipart session store, e.g.
// with a persisted implementation that survives process restarts.
func WithSessionStore(sessions SessionStore) Option {
	return func(o *storeOptions) {
		o.sessions = sessions
	}
}

// WithFilesystem sets a custom filesystem implementation for the file
// transfer helpers. Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(o *storeOptions) {
		o.filesystem = filesystem
	}
}

// WithClock overrides the time source used for request signing. Only
// useful in tests that need deterministic signatures.
func WithClock(clock func() time.Time) Option {
	return func(o *storeOptions) {
		o.clock = clock
	}
}

// putConfig holds per-call configuration for Put and Upload.
type putConfig struct {
	contentType        string
	cacheControl       string
	contentDisposition string
	acl                ObjectACL
	storageClass       StorageClass
	metadata           map[string]string
	compress           bool
	ifMatch            string
	ifNoneMatch        bool
}

// PutOption is a functional option for configuring put operations.
type PutOption func(*putConfig)

// WithContentType sets the Content-Type for the stored object. When unset
// it is detected from the key extension or the payload bytes.
func WithContentType(contentType string) PutOption {
	return func(c *putConfig) {
		c.contentType = contentType
	}
}

// WithCacheControl sets the Cache-Control header for the stored object.
func WithCacheControl(cacheControl string) PutOption {
	return func(c *putConfig) {
		c.cacheControl = cacheControl
	}
}

// WithContentDisposition sets the Content-Disposition header for the
// stored object.
func WithContentDisposition(disposition string) PutOption {
	return func(c *putConfig) {
		c.contentDisposition = disposition
	}
}

// WithACL sets the canned ACL for the stored object.
func WithACL(acl ObjectACL) PutOption {
	return func(c *putConfig) {
		c.acl = acl
	}
}

// WithStorageClass sets the storage class for the stored object.
func WithStorageClass(storageClass StorageClass) PutOption {
	return func(c *putConfig) {
		c.storageClass = storageClass
	}
}

// WithMetadata sets custom metadata entries, stored as one
// x-amz-meta-<key> header per entry.
func WithMetadata(metadata map[string]string) PutOption {
	return func(c *putConfig) {
		if c.metadata == nil {
			c.metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			c.metadata[k] = v
		}
	}
}

// WithCompression gzip-compresses the payload before upload and records
// Content-Encoding: gzip on the object. Callers reading the object back
// must request decompression (or inspect ContentEncoding) themselves.
func WithCompression() PutOption {
	return func(c *putConfig) {
		c.compress = true
	}
}

// WithIfNoneMatch makes the write conditional on the key not existing
// (If-None-Match: *). An existing object fails with PRECONDITION_FAILED.
func WithIfNoneMatch() PutOption {
	return func(c *putConfig) {
		c.ifNoneMatch = true
	}
}

// WithIfMatch makes the write conditional on the current object matching
// etag. A mismatch fails with PRECONDITION_FAILED.
func WithIfMatch(etag string) PutOption {
	return func(c *putConfig) {
		c.ifMatch = etag
	}
}

// getConfig holds per-call configuration for Get.
type getConfig struct {
	rangeSpec       string
	ifModifiedSince time.Time
	ifNoneMatch     string
	decompress      bool
}

// GetOption is a functional option for configuring get operations.
type GetOption func(*getConfig)

// WithRange requests the byte range [start, end] (inclusive, zero-based).
func WithRange(start, end int64) GetOption {
	return func(c *getConfig) {
		c.rangeSpec = rangeSpec(start, end)
	}
}

// WithIfModifiedSince makes the read conditional; an unmodified object
// yields a nil StorageObject rather than an error.
func WithIfModifiedSince(since time.Time) GetOption {
	return func(c *getConfig) {
		c.ifModifiedSince = since
	}
}

// WithGetIfNoneMatch makes the read conditional on the object's ETag not
// matching etag; a match yields a nil StorageObject.
func WithGetIfNoneMatch(etag string) GetOption {
	return func(c *getConfig) {
		c.ifNoneMatch = etag
	}
}

// WithDecompression decompresses the payload when the response declares
// a Content-Encoding the store's compressor understands.
func WithDecompression() GetOption {
	return func(c *getConfig) {
		c.decompress = true
	}
}

// deleteConfig holds per-call configuration for Delete.
type deleteConfig struct {
	versionID        string
	bypassGovernance bool
}

// DeleteOption is a functional option for configuring delete operations.
type DeleteOption func(*deleteConfig)

// WithVersionID deletes a specific object version.
func WithVersionID(versionID string) DeleteOption {
	return func(c *deleteConfig) {
		c.versionID = versionID
	}
}

// WithBypassGovernance sets the governance-retention bypass header.
func WithBypassGovernance() DeleteOption {
	return func(c *deleteConfig) {
		c.bypassGovernance = true
	}
}

// listConfig holds per-call configuration for List.
type listConfig struct {
	prefix            string
	delimiter         string
	maxKeys           int
	continuationToken string
	startAfter        string
}

// ListOption is a functional option for configuring list operations.
type ListOption func(*listConfig)

// WithPrefix filters results to keys beginning with prefix.
func WithPrefix(prefix string) ListOption {
	return func(c *listConfig) {
		c.prefix = prefix
	}
}

// WithDelimiter groups keys sharing a prefix up to delimiter into
// CommonPrefixes (e.g. "/" for directory-style listing).
func WithDelimiter(delimiter string) ListOption {
	return func(c *listConfig) {
		c.delimiter = delimiter
	}
}

// WithMaxKeys caps the page size (1-1000).
func WithMaxKeys(maxKeys int) ListOption {
	return func(c *listConfig) {
		if maxKeys > 0 {
			c.maxKeys = maxKeys
		}
	}
}

// WithContinuationToken resumes listing from a previous page's cursor.
func WithContinuationToken(token string) ListOption {
	return func(c *listConfig) {
		c.continuationToken = token
	}
}

// WithStartAfter starts listing after the given key.
func WithStartAfter(key string) ListOption {
	return func(c *listConfig) {
		c.startAfter = key
	}
}

// copyConfig holds per-call configuration for Copy.
type copyConfig struct {
	contentType  string
	cacheControl string
	metadata     map[string]string
	storageClass StorageClass
}

// CopyOption is a functional option for configuring copy operations.
// Supplying a content type or metadata switches the provider's metadata
// directive from COPY to REPLACE.
type CopyOption func(*copyConfig)

// WithCopyContentType sets a new content type on the destination object.
func WithCopyContentType(contentType string) CopyOption {
	return func(c *copyConfig) {
		c.contentType = contentType
	}
}

// WithCopyCacheControl sets a new Cache-Control on the destination object.
func WithCopyCacheControl(cacheControl string) CopyOption {
	return func(c *copyConfig) {
		c.cacheControl = cacheControl
	}
}

// WithCopyMetadata replaces the destination object's custom metadata.
func WithCopyMetadata(metadata map[string]string) CopyOption {
	return func(c *copyConfig) {
		if c.metadata == nil {
			c.metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			c.metadata[k] = v
		}
	}
}

// WithCopyStorageClass sets the destination object's storage class.
func WithCopyStorageClass(storageClass StorageClass) CopyOption {
	return func(c *copyConfig) {
		c.storageClass = storageClass
	}
}

// presignConfig holds per-call configuration for Presign.
type presignConfig struct {
	responseContentType        string
	responseContentDisposition string
	responseCacheControl       string
}

// PresignOption is a functional option for configuring presigned URLs.
// Response-header overrides become signed query parameters.
type PresignOption func(*presignConfig)

// WithResponseContentType overrides Content-Type on the eventual response.
func WithResponseContentType(contentType string) PresignOption {
	return func(c *presignConfig) {
		c.responseContentType = contentType
	}
}

// WithResponseContentDisposition overrides Content-Disposition on the
// eventual response.
func WithResponseContentDisposition(disposition string) PresignOption {
	return func(c *presignConfig) {
		c.responseContentDisposition = disposition
	}
}

// WithResponseCacheControl overrides Cache-Control on the eventual response.
func WithResponseCacheControl(cacheControl string) PresignOption {
	return func(c *presignConfig) {
		c.responseCacheControl = cacheControl
	}
}

// syncConfig holds per-call configuration for SyncDirectory.
type syncConfig struct {
	dryRun      bool
	deleteExtra bool
}

// SyncOption is a functional option for configuring directory sync.
type SyncOption func(*syncConfig)

// WithDryRun plans the sync without transferring or deleting anything.
func WithDryRun() SyncOption {
	return func(c *syncConfig) {
		c.dryRun = true
	}
}

// WithDeleteExtra removes remote objects under the prefix that have no
// local counterpart.
func WithDeleteExtra() SyncOption {
	return func(c *syncConfig) {
		c.deleteExtra = true
	}
}
