package objectstore

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// SyncDirectory mirrors the local directory at localDir to the store
// under prefix. A file is uploaded when no remote object exists for it or
// when size or modification time differ; unchanged files are skipped.
// WithDeleteExtra additionally removes remote objects with no local
// counterpart, and WithDryRun plans without transferring.
func (s *Store) SyncDirectory(ctx context.Context, localDir, prefix string, opts ...SyncOption) (*SyncResult, error) {
	const op = "syncDirectory"

	cfg := syncConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	info, err := s.opts.filesystem.Stat(localDir)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, op).
			WithMessage("stat local directory").WithCause(err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.CodeInvalidInput, op).
			WithMessage("local path is not a directory")
	}

	prefix = strings.Trim(prefix, "/")

	remote, err := s.remoteIndex(ctx, prefix)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	seen := make(map[string]bool)

	walkErr := s.opts.filesystem.Walk(localDir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" {
			key = path.Join(prefix, key)
		}
		seen[key] = true

		// Remote timestamps carry second precision, so compare against the
		// local mtime truncated to seconds.
		if obj, ok := remote[key]; ok && obj.Size == fi.Size() &&
			!obj.LastModified.Before(fi.ModTime().Truncate(time.Second)) {
			result.FilesSkipped++
			return nil
		}

		if !cfg.dryRun {
			content, err := s.opts.filesystem.ReadFile(p)
			if err != nil {
				return err
			}
			if _, err := s.Put(ctx, key, content); err != nil {
				return err
			}
		}
		result.FilesUploaded++
		result.BytesUploaded += fi.Size()
		return nil
	})
	if walkErr != nil {
		if e, ok := walkErr.(*errors.Error); ok {
			return nil, e
		}
		return nil, errors.New(errors.CodeInternal, op).
			WithMessage("walking local directory").WithCause(walkErr)
	}

	if cfg.deleteExtra {
		var extra []string
		for key := range remote {
			if !seen[key] {
				extra = append(extra, key)
			}
		}
		if !cfg.dryRun {
			for start := 0; start < len(extra); start += 1000 {
				end := min(start+1000, len(extra))
				if _, err := s.DeleteMany(ctx, extra[start:end]); err != nil {
					return nil, err
				}
			}
		}
		result.FilesDeleted = len(extra)
	}

	return result, nil
}

// remoteIndex lists every object under prefix into a key-indexed map.
func (s *Store) remoteIndex(ctx context.Context, prefix string) (map[string]Object, error) {
	listPrefix := prefix
	if listPrefix != "" {
		listPrefix += "/"
	}

	index := make(map[string]Object)
	var token string
	for {
		opts := []ListOption{WithPrefix(listPrefix)}
		if token != "" {
			opts = append(opts, WithContinuationToken(token))
		}
		page, err := s.List(ctx, opts...)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			index[obj.Key] = obj
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			return index, nil
		}
		token = page.NextContinuationToken
	}
}
