package objectstore

import (
	"net/http"
	"net/url"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

const maxPresignExpiry = 7 * 24 * time.Hour

// Presign builds a URL granting temporary, credential-free access to key.
// method is the HTTP method the URL authorizes (GET, PUT, HEAD, or
// DELETE); expiresIn caps the URL's validity at seven days. The URL is
// computed locally without any network I/O, so it does not verify that
// the object exists.
func (s *Store) Presign(method, key string, expiresIn time.Duration, opts ...PresignOption) (string, error) {
	const op = "presign"

	switch method {
	case http.MethodGet, http.MethodPut, http.MethodHead, http.MethodDelete:
	default:
		return "", errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("method must be GET, PUT, HEAD, or DELETE")
	}
	if expiresIn <= 0 || expiresIn > maxPresignExpiry {
		return "", errors.New(errors.CodeInvalidInput, op).WithKey(key).
			WithMessage("expiry must be positive and at most 7 days")
	}

	key, err := s.prepareKey(op, key)
	if err != nil {
		return "", err
	}

	cfg := presignConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	query := url.Values{}
	if cfg.responseContentType != "" {
		query.Set("response-content-type", cfg.responseContentType)
	}
	if cfg.responseContentDisposition != "" {
		query.Set("response-content-disposition", cfg.responseContentDisposition)
	}
	if cfg.responseCacheControl != "" {
		query.Set("response-cache-control", cfg.responseCacheControl)
	}

	u := s.url(key, query)
	signed := s.signer.Presign(method, u, u.Host, expiresIn, s.opts.clock().UTC())
	return signed.String(), nil
}
