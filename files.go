package objectstore

import (
	"context"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// UploadFile stores the local file at path under key. The content type
// is detected from the file extension unless overridden by an option.
func (s *Store) UploadFile(ctx context.Context, key, path string, opts ...PutOption) (*ObjectMetadata, error) {
	const op = "uploadFile"

	info, err := s.opts.filesystem.Stat(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("stat local file").WithCause(err)
	}
	if info.IsDir() {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("path is a directory, not a file")
	}

	file, err := s.opts.filesystem.Open(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("open local file").WithCause(err)
	}
	defer file.Close()

	return s.Upload(ctx, key, file, opts...)
}

// DownloadFile retrieves the object stored under key and writes it to
// the local file at path, creating parent directories as needed. A
// missing object is an error.
func (s *Store) DownloadFile(ctx context.Context, key, path string, opts ...GetOption) error {
	const op = "downloadFile"

	obj, err := s.Get(ctx, key, opts...)
	if err != nil {
		return err
	}
	if obj == nil {
		return errors.New(errors.CodeNotFound, op).WithKey(key).
			WithMessage("object not found")
	}

	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := s.opts.filesystem.MkdirAll(dir, 0o755); err != nil {
			return errors.New(errors.CodeInternal, op).WithKey(key).
				WithMessage("create local directory").WithCause(err)
		}
	}

	file, err := s.opts.filesystem.Create(path)
	if err != nil {
		return errors.New(errors.CodeInternal, op).WithKey(key).
			WithMessage("create local file").WithCause(err)
	}

	if _, err := file.Write(obj.Content); err != nil {
		file.Close()
		return errors.New(errors.CodeInternal, op).WithKey(key).
			WithMessage("write local file").WithCause(err)
	}
	if err := file.Close(); err != nil {
		return errors.New(errors.CodeInternal, op).WithKey(key).
			WithMessage("close local file").WithCause(err)
	}
	return nil
}
