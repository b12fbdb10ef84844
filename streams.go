package objectstore

import (
	"bytes"
	"context"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// NewReader returns a reader over the object stored under key. Unlike
// Get, a missing object is an error here since there is nothing to read.
func (s *Store) NewReader(ctx context.Context, key string, opts ...GetOption) (io.ReadCloser, error) {
	const op = "newReader"

	obj, err := s.Get(ctx, key, opts...)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New(errors.CodeNotFound, op).WithKey(key).
			WithMessage("object not found")
	}
	return io.NopCloser(bytes.NewReader(obj.Content)), nil
}

// objectWriter buffers writes and stores the object on Close.
type objectWriter struct {
	ctx    context.Context
	store  *Store
	key    string
	opts   []PutOption
	buf    bytes.Buffer
	closed bool
}

// NewWriter returns a writer that stores its accumulated content under
// key when closed. Nothing is sent to the provider before Close; a
// writer abandoned without Close stores nothing.
func (s *Store) NewWriter(ctx context.Context, key string, opts ...PutOption) (io.WriteCloser, error) {
	key, err := s.prepareKey("newWriter", key)
	if err != nil {
		return nil, err
	}
	return &objectWriter{ctx: ctx, store: s, key: key, opts: opts}, nil
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New(errors.CodeInvalidInput, "writer").
			WithKey(w.key).WithMessage("write after close")
	}
	return w.buf.Write(p)
}

// Close uploads the buffered content. Closing twice is an error.
func (w *objectWriter) Close() error {
	if w.closed {
		return errors.New(errors.CodeInvalidInput, "writer").
			WithKey(w.key).WithMessage("already closed")
	}
	w.closed = true
	_, err := w.store.Put(w.ctx, w.key, w.buf.Bytes(), w.opts...)
	return err
}
