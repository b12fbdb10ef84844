package objectstore

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/wire"
)

// InitiateMultipartUpload begins a multipart upload for key and returns
// the session tracking it. Parts may then be uploaded concurrently with
// UploadPart before CompleteMultipartUpload assembles the object.
func (s *Store) InitiateMultipartUpload(ctx context.Context, key string, opts ...PutOption) (*MultipartSession, error) {
	const op = "initiateMultipartUpload"

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

	header := make(http.Header)
	if cfg.contentType != "" {
		header.Set("Content-Type", cfg.contentType)
	}
	if cfg.storageClass != "" {
		header.Set("x-amz-storage-class", string(cfg.storageClass))
	}
	if cfg.acl != "" {
		header.Set("x-amz-acl", string(cfg.acl))
	}
	for k, v := range cfg.metadata {
		header.Set(metaHeaderPrefix+k, v)
	}

	query := url.Values{"uploads": []string{""}}
	resp, err := s.do(ctx, op, http.MethodPost, s.url(key, query), header, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, key, resp)
	}

	uploadID, err := wire.ParseInitiateMultipartUpload(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, op).WithKey(key).
			WithMessage("parsing initiate response").WithCause(err)
	}
	if uploadID == "" {
		return nil, errors.New(errors.CodeInternal, op).WithKey(key).
			WithMessage("provider returned no upload ID")
	}

	session := &MultipartSession{
		UploadID:  uploadID,
		Key:       key,
		StartedAt: s.opts.clock().UTC(),
	}
	s.opts.sessions.Register(session)
	return session, nil
}

// UploadPart uploads one part of a multipart upload. partNumber starts at
// 1; parts may be uploaded in any order and from multiple goroutines. The
// part's ETag is recorded on the session for completion.
func (s *Store) UploadPart(ctx context.Context, uploadID string, partNumber int, content []byte) (*Part, error) {
	const op = "uploadPart"

	session, ok := s.opts.sessions.Get(uploadID)
	if !ok {
		return nil, errors.New(errors.CodeNotFound, op).WithKey(uploadID).
			WithMessage("unknown upload ID")
	}
	if partNumber < 1 || partNumber > 10000 {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(session.Key).
			WithMessage("part number must be between 1 and 10000")
	}

	query := url.Values{
		"partNumber": []string{strconv.Itoa(partNumber)},
		"uploadId":   []string{uploadID},
	}
	resp, err := s.do(ctx, op, http.MethodPut, s.url(session.Key, query), nil, content)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, session.Key, resp)
	}

	part := &Part{
		PartNumber: partNumber,
		ETag:       resp.Header.Get("ETag"),
	}
	session.AddPart(*part)
	return part, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the final
// object and returns its metadata. Parts are sent to the provider in
// ascending part-number order regardless of upload order. The session is
// forgotten on success.
func (s *Store) CompleteMultipartUpload(ctx context.Context, uploadID string) (*ObjectMetadata, error) {
	const op = "completeMultipartUpload"

	session, ok := s.opts.sessions.Get(uploadID)
	if !ok {
		return nil, errors.New(errors.CodeNotFound, op).WithKey(uploadID).
			WithMessage("unknown upload ID")
	}

	parts := session.Parts()
	if len(parts) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(session.Key).
			WithMessage("no parts uploaded")
	}
	completed := make([]wire.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, wire.CompletedPart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}

	body, err := wire.BuildCompleteMultipartUpload(completed)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, op).WithKey(session.Key).
			WithMessage("building completion request").WithCause(err)
	}

	query := url.Values{"uploadId": []string{uploadID}}
	header := make(http.Header)
	header.Set("Content-Type", "application/xml")

	resp, err := s.do(ctx, op, http.MethodPost, s.url(session.Key, query), header, body)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, unexpected(op, session.Key, resp)
	}

	s.opts.sessions.Remove(uploadID)

	md, err := s.GetMetadata(ctx, session.Key)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, errors.New(errors.CodeInternal, op).WithKey(session.Key).
			WithMessage("completed object not found")
	}
	return md, nil
}

// AbortMultipartUpload cancels a multipart upload and releases its parts
// on the provider. Aborting an unknown upload ID is a no-op.
func (s *Store) AbortMultipartUpload(ctx context.Context, uploadID string) error {
	const op = "abortMultipartUpload"

	session, ok := s.opts.sessions.Get(uploadID)
	if !ok {
		return nil
	}

	query := url.Values{"uploadId": []string{uploadID}}
	resp, err := s.do(ctx, op, http.MethodDelete, s.url(session.Key, query), nil, nil)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		s.opts.sessions.Remove(uploadID)
		return nil
	}
	return unexpected(op, session.Key, resp)
}
