package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/wire"
)

// Put stores content under key and returns the stored object's metadata.
// The key is normalized (leading slashes stripped, duplicate separators
// collapsed) before use. Content type is detected from the key extension
// or payload when not set by an option.
func (s *Store) Put(ctx context.Context, key string, content []byte, opts ...PutOption) (*ObjectMetadata, error) {
	const op = "put"

	key, err := s.prepareKey(op, key)
	if err != nil {
		return nil, err
	}

	cfg := putConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.ValidateMetadata(cfg.metadata); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(key).WithCause(err)
	}

	contentType := cfg.contentType
	if contentType == "" {
		contentType = detectContentType(key, content)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType)
	if cfg.compress {
		compressed, err := s.opts.compressor.Compress(content)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, op).WithKey(key).
				WithMessage("compressing payload").WithCause(err)
		}
		content = compressed
		header.Set("Content-Encoding", s.opts.compressor.ContentEncoding())
	}
	if cfg.cacheControl != "" {
		header.Set("Cache-Control", cfg.cacheControl)
	}
	if cfg.contentDisposition != "" {
		header.Set("Content-Disposition", cfg.contentDisposition)
	}
	if cfg.acl != "" {
		header.Set("x-amz-acl", string(cfg.acl))
	}
	if cfg.storageClass != "" {
		header.Set("x-amz-storage-class", string(cfg.storageClass))
	}
	if cfg.ifNoneMatch {
		header.Set("If-None-Match", "*")
	}
	if cfg.ifMatch != "" {
		header.Set("If-Match", cfg.ifMatch)
	}
	for k, v := range cfg.metadata {
		header.Set(metaHeaderPrefix+k, v)
	}

	resp, err := s.do(ctx, op, http.MethodPut, s.url(key, nil), header, content)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, key, resp)
	}

	md := metadataFromHeaders(resp.Header, int64(len(content)))
	md.ContentType = contentType
	if cfg.compress {
		md.ContentEncoding = s.opts.compressor.ContentEncoding()
	}
	if md.ETag == "" {
		md.ETag = fmt.Sprintf("%x", md5.Sum(content))
		md.Checksum = md.ETag
	}
	if md.StorageClass == "" {
		md.StorageClass = cfg.storageClass
	}
	if len(cfg.metadata) > 0 {
		md.Metadata = make(map[string]string, len(cfg.metadata))
		for k, v := range cfg.metadata {
			md.Metadata[strings.ToLower(k)] = v
		}
	}
	if md.LastModified.IsZero() {
		md.LastModified = s.opts.clock().UTC()
		md.CreatedAt = md.LastModified
	}
	return md, nil
}

// Upload stores the contents of reader under key. The reader is drained
// into memory before upload; use InitiateMultipartUpload for payloads too
// large to buffer.
func (s *Store) Upload(ctx context.Context, key string, reader io.Reader, opts ...PutOption) (*ObjectMetadata, error) {
	const op = "upload"

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("reading upload content").WithCause(err)
	}
	return s.Put(ctx, key, content, opts...)
}

// Get retrieves the object stored under key. A missing object returns
// (nil, nil); callers distinguish absence from failure without sentinel
// checks. A conditional read whose condition holds (304) also returns
// (nil, nil).
func (s *Store) Get(ctx context.Context, key string, opts ...GetOption) (*StorageObject, error) {
	const op = "get"

	key, err := s.prepareKey(op, key)
	if err != nil {
		return nil, err
	}

	cfg := getConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	header := make(http.Header)
	if cfg.rangeSpec != "" {
		header.Set("Range", cfg.rangeSpec)
	}
	if !cfg.ifModifiedSince.IsZero() {
		header.Set("If-Modified-Since", cfg.ifModifiedSince.UTC().Format(http.TimeFormat))
	}
	if cfg.ifNoneMatch != "" {
		header.Set("If-None-Match", cfg.ifNoneMatch)
	}

	resp, err := s.do(ctx, op, http.MethodGet, s.url(key, nil), header, nil)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusNotModified:
		return nil, nil
	}
	if !resp.OK() {
		return nil, unexpected(op, key, resp)
	}

	content := resp.Body
	if cfg.decompress && resp.Header.Get("Content-Encoding") == s.opts.compressor.ContentEncoding() {
		content, err = s.opts.compressor.Decompress(content)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, op).WithKey(key).
				WithMessage("decompressing payload").WithCause(err)
		}
	}

	md := metadataFromHeaders(resp.Header, int64(len(content)))
	return &StorageObject{
		Key:      key,
		Content:  content,
		Metadata: *md,
	}, nil
}

// Delete removes the object stored under key. Deleting an absent object
// succeeds; the bool reports whether the store accepted the delete, not
// whether an object existed.
func (s *Store) Delete(ctx context.Context, key string, opts ...DeleteOption) (bool, error) {
	const op = "delete"

	key, err := s.prepareKey(op, key)
	if err != nil {
		return false, err
	}

	cfg := deleteConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var query url.Values
	if cfg.versionID != "" {
		query = url.Values{"versionId": []string{cfg.versionID}}
	}
	header := make(http.Header)
	if cfg.bypassGovernance {
		header.Set("x-amz-bypass-governance-retention", "true")
	}

	resp, err := s.do(ctx, op, http.MethodDelete, s.url(key, query), header, nil)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return true, nil
	}
	return false, unexpected(op, key, resp)
}

// Exists reports whether an object is stored under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	md, err := s.GetMetadata(ctx, key)
	if err != nil {
		return false, err
	}
	return md != nil, nil
}

// GetMetadata retrieves an object's metadata without its content. A
// missing object returns (nil, nil).
func (s *Store) GetMetadata(ctx context.Context, key string) (*ObjectMetadata, error) {
	const op = "getMetadata"

	key, err := s.prepareKey(op, key)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, op, http.MethodHead, s.url(key, nil), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if !resp.OK() {
		return nil, unexpected(op, key, resp)
	}
	return metadataFromHeaders(resp.Header, -1), nil
}

// List returns one page of objects, optionally filtered by prefix and
// grouped by delimiter. When the result is truncated its continuation
// token resumes the listing.
func (s *Store) List(ctx context.Context, opts ...ListOption) (*ListResult, error) {
	const op = "list"

	cfg := listConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	query := url.Values{"list-type": []string{"2"}}
	if cfg.prefix != "" {
		query.Set("prefix", cfg.prefix)
	}
	if cfg.delimiter != "" {
		query.Set("delimiter", cfg.delimiter)
	}
	if cfg.maxKeys > 0 {
		query.Set("max-keys", strconv.Itoa(cfg.maxKeys))
	}
	if cfg.continuationToken != "" {
		query.Set("continuation-token", cfg.continuationToken)
	}
	if cfg.startAfter != "" {
		query.Set("start-after", cfg.startAfter)
	}

	resp, err := s.do(ctx, op, http.MethodGet, s.url("", query), nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, "", resp)
	}

	parsed, err := wire.ParseList(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, op).
			WithMessage("parsing list response").WithCause(err)
	}

	result := &ListResult{
		IsTruncated:           parsed.IsTruncated,
		NextContinuationToken: parsed.NextContinuationToken,
	}
	for _, c := range parsed.Contents {
		result.Objects = append(result.Objects, Object{
			Key:          c.Key,
			Size:         c.Size,
			ETag:         strings.Trim(c.ETag, `"`),
			LastModified: c.ModTime(),
			StorageClass: StorageClass(c.StorageClass),
		})
	}
	for _, p := range parsed.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, p.Prefix)
	}
	return result, nil
}

// ListAll streams every object under prefix, following continuation
// tokens until the listing is exhausted or ctx is cancelled. The channel
// is closed when iteration ends; a pagination failure ends the stream
// early and is reported through errFn if non-nil.
func (s *Store) ListAll(ctx context.Context, prefix string, errFn func(error)) <-chan Object {
	out := make(chan Object)
	go func() {
		defer close(out)
		var token string
		for {
			opts := []ListOption{WithPrefix(prefix)}
			if token != "" {
				opts = append(opts, WithContinuationToken(token))
			}
			page, err := s.List(ctx, opts...)
			if err != nil {
				if errFn != nil {
					errFn(err)
				}
				return
			}
			for _, obj := range page.Objects {
				select {
				case out <- obj:
				case <-ctx.Done():
					return
				}
			}
			if !page.IsTruncated || page.NextContinuationToken == "" {
				return
			}
			token = page.NextContinuationToken
		}
	}()
	return out
}

// Copy duplicates the object at srcKey to dstKey server-side. Options
// that change metadata switch the copy to REPLACE semantics. Returns the
// destination object's metadata.
func (s *Store) Copy(ctx context.Context, srcKey, dstKey string, opts ...CopyOption) (*ObjectMetadata, error) {
	const op = "copy"

	srcKey, err := s.prepareKey(op, srcKey)
	if err != nil {
		return nil, err
	}
	dstKey, err = s.prepareKey(op, dstKey)
	if err != nil {
		return nil, err
	}

	cfg := copyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.ValidateMetadata(cfg.metadata); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(dstKey).WithCause(err)
	}

	header := make(http.Header)
	header.Set("x-amz-copy-source", "/"+s.cfg.Bucket+"/"+srcKey)
	if cfg.contentType != "" || cfg.cacheControl != "" || len(cfg.metadata) > 0 {
		header.Set("x-amz-metadata-directive", "REPLACE")
		if cfg.contentType != "" {
			header.Set("Content-Type", cfg.contentType)
		}
		if cfg.cacheControl != "" {
			header.Set("Cache-Control", cfg.cacheControl)
		}
		for k, v := range cfg.metadata {
			header.Set(metaHeaderPrefix+k, v)
		}
	}
	if cfg.storageClass != "" {
		header.Set("x-amz-storage-class", string(cfg.storageClass))
	}

	resp, err := s.do(ctx, op, http.MethodPut, s.url(dstKey, nil), header, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, srcKey, resp)
	}
	if _, err := wire.ParseCopyObject(resp.Body); err != nil {
		return nil, errors.New(errors.CodeInternal, op).WithKey(dstKey).
			WithMessage("parsing copy response").WithCause(err)
	}

	md, err := s.GetMetadata(ctx, dstKey)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, errors.New(errors.CodeInternal, op).WithKey(dstKey).
			WithMessage("copied object not found")
	}
	return md, nil
}

// Move copies the object at srcKey to dstKey and deletes the source.
func (s *Store) Move(ctx context.Context, srcKey, dstKey string, opts ...CopyOption) (*ObjectMetadata, error) {
	md, err := s.Copy(ctx, srcKey, dstKey, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Delete(ctx, srcKey); err != nil {
		return nil, err
	}
	return md, nil
}

// DeleteMany removes up to 1000 objects in a single batch request and
// reports per-key outcomes.
func (s *Store) DeleteMany(ctx context.Context, keys []string) (*DeleteResult, error) {
	const op = "deleteMany"

	if len(keys) == 0 {
		return &DeleteResult{}, nil
	}
	if len(keys) > 1000 {
		return nil, errors.New(errors.CodeInvalidInput, op).
			WithMessage("batch delete supports at most 1000 keys")
	}

	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		key, err := s.prepareKey(op, key)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, key)
	}

	body, err := wire.BuildDeleteBatch(normalized)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, op).
			WithMessage("building delete batch").WithCause(err)
	}

	sum := md5.Sum(body)
	header := make(http.Header)
	header.Set("Content-Type", "application/xml")
	header.Set("Content-MD5", base64.StdEncoding.EncodeToString(sum[:]))

	query := url.Values{"delete": []string{""}}
	resp, err := s.do(ctx, op, http.MethodPost, s.url("", query), header, body)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, "", resp)
	}

	parsed, err := wire.ParseDeleteResult(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, op).
			WithMessage("parsing delete response").WithCause(err)
	}

	result := &DeleteResult{}
	for _, d := range parsed.Deleted {
		result.Deleted = append(result.Deleted, d.Key)
	}
	for _, e := range parsed.Errors {
		result.Errors = append(result.Errors, DeleteError{
			Key:     e.Key,
			Code:    e.Code,
			Message: e.Message,
		})
	}
	return result, nil
}

// prepareKey normalizes and validates key for op.
func (s *Store) prepareKey(op, key string) (string, error) {
	key = validation.NormalizeKey(key)
	if err := validation.ValidateKey(key); err != nil {
		return "", errors.New(errors.CodeInvalidInput, op).WithKey(key).WithCause(err)
	}
	return key, nil
}

// detectContentType resolves a content type from the key's extension,
// falling back to sniffing the payload bytes.
func detectContentType(key string, content []byte) string {
	if ext := filepath.Ext(key); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	if len(content) > 0 {
		return mimetype.Detect(content).String()
	}
	return "application/octet-stream"
}
