package objectstore

import (
	"sync"
	"time"
)

// StorageClass represents the provider storage class for objects.
type StorageClass string

// Predefined storage classes
const (
	// StorageClassStandard is the default storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"
)

// ObjectACL represents the access control list applied to stored objects.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLPublicReadWrite grants public read and write access
	ACLPublicReadWrite ObjectACL = "public-read-write"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLOwnerRead grants bucket owner read access
	ACLOwnerRead ObjectACL = "bucket-owner-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// Config carries the connection settings consumed at construction.
type Config struct {
	// Endpoint is the provider host, either "host[:port]" or a full URL.
	// A scheme on the endpoint overrides UseSSL.
	Endpoint string

	// Region is the signing region (e.g. "us-east-1"; "auto" for R2).
	Region string

	// Bucket is the bucket every operation of this store targets.
	Bucket string

	// AccessKeyID and SecretAccessKey are the static credentials.
	AccessKeyID     string
	SecretAccessKey string

	// SessionToken is the optional STS token, sent and signed when present.
	SessionToken string

	// ForcePathStyle selects endpoint/bucket/key URLs instead of
	// bucket.endpoint/key. Required for most self-hosted backends.
	ForcePathStyle bool

	// SignatureVersion selects the signing scheme; only "v4" (the default)
	// is supported.
	SignatureVersion string

	// Timeout bounds each HTTP attempt. Defaults to 30 seconds.
	Timeout time.Duration

	// MaxRetries bounds additional attempts for retryable failures
	// (NETWORK_ERROR and 5xx). Zero selects the default of 3; a negative
	// value disables retries.
	MaxRetries int

	// UseSSL selects https when true, http when false. Ignored when the
	// endpoint carries an explicit scheme.
	UseSSL bool

	// Port overrides the endpoint port when the endpoint does not name one.
	Port int
}

// Object represents a stored object with its basic metadata, as returned
// by list operations.
type Object struct {
	// Key is the object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the provider entity tag for the object
	ETag string

	// StorageClass is the provider storage class
	StorageClass StorageClass
}

// ObjectMetadata contains detailed metadata about a stored object.
type ObjectMetadata struct {
	// ContentType is the MIME type of the object
	ContentType string

	// Size is the byte length of the stored payload. When the payload was
	// compressed client-side this is the compressed length.
	Size int64

	// ETag is the provider-reported entity tag, falling back to a locally
	// computed digest only when the provider omits it
	ETag string

	// Checksum is the provider-reported payload checksum, if any
	Checksum string

	// LastModified is when the object was last modified
	LastModified time.Time

	// CreatedAt is when this client stored the object; only populated on
	// fresh writes
	CreatedAt time.Time

	// Metadata contains user-defined metadata (x-amz-meta-*)
	Metadata map[string]string

	// ContentEncoding records the payload encoding (e.g. "gzip")
	ContentEncoding string

	// CacheControl is the object's Cache-Control header
	CacheControl string

	// ContentDisposition is the object's Content-Disposition header
	ContentDisposition string

	// StorageClass is the provider storage class
	StorageClass StorageClass

	// VersionID is the object version when bucket versioning is enabled
	VersionID string
}

// StorageObject is the result of a Get: the payload plus its metadata.
type StorageObject struct {
	Key      string
	Content  []byte
	Metadata ObjectMetadata
}

// ListResult contains one page of a list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// CommonPrefixes contains the rolled-up prefixes when a delimiter
	// was supplied
	CommonPrefixes []string

	// IsTruncated indicates more results are available
	IsTruncated bool

	// NextContinuationToken is the cursor for the next page; set iff
	// the provider reported truncation
	NextContinuationToken string
}

// DeleteResult contains the outcome of a batch delete.
type DeleteResult struct {
	// Deleted lists the keys removed successfully
	Deleted []string

	// Errors lists per-key failures
	Errors []DeleteError
}

// DeleteError represents one failed deletion inside a batch delete.
type DeleteError struct {
	Key     string
	Code    string
	Message string
}

// SyncResult contains the outcome of a directory sync.
type SyncResult struct {
	// FilesUploaded is the number of files uploaded
	FilesUploaded int

	// FilesSkipped is the number of files skipped as unchanged
	FilesSkipped int

	// FilesDeleted is the number of remote objects deleted
	FilesDeleted int

	// BytesUploaded is the total bytes uploaded
	BytesUploaded int64
}

// Compressor is the payload compression capability consumed by Put and
// Get. The default implementation is gzip; tests substitute fakes.
type Compressor interface {
	// Compress returns the encoded form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)

	// ContentEncoding names the encoding for Content-Encoding headers.
	ContentEncoding() string
}

// Part records one uploaded part of a multipart session.
type Part struct {
	PartNumber int
	ETag       string
}

// MultipartSession tracks the client-side state of one in-progress
// multipart upload. Parts are append-only during the session and may be
// recorded concurrently; ordering happens at completion time.
type MultipartSession struct {
	UploadID  string
	Key       string
	StartedAt time.Time

	mu    sync.Mutex
	parts []Part
}

// AddPart records an uploaded part. Safe for concurrent use.
func (s *MultipartSession) AddPart(p Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = append(s.parts, p)
}

// Parts returns a snapshot of the recorded parts in arrival order.
func (s *MultipartSession) Parts() []Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Part(nil), s.parts...)
}

// SessionStore owns MultipartSession lifetimes, keyed by upload ID. The
// shipped implementation is in-memory: sessions do not survive a process
// restart even though the provider may still hold the remote upload.
// Callers needing durability inject their own implementation.
type SessionStore interface {
	// Register adds a session to the store.
	Register(session *MultipartSession)

	// Get looks up a session by upload ID.
	Get(uploadID string) (*MultipartSession, bool)

	// Remove deletes a session; removing an absent session is a no-op.
	Remove(uploadID string)
}

// memorySessionStore is the default process-local SessionStore.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*MultipartSession
}

// NewMemorySessionStore creates the default in-memory session store.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]*MultipartSession)}
}

func (m *memorySessionStore) Register(session *MultipartSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.UploadID] = session
}

func (m *memorySessionStore) Get(uploadID string) (*MultipartSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[uploadID]
	return session, ok
}

func (m *memorySessionStore) Remove(uploadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, uploadID)
}
