// Package signer implements AWS Signature Version 4 request signing for
// S3-compatible backends.
//
// Two modes are supported: header-based signing for requests the client
// executes itself (Sign), and query-based signing for presigned URLs
// (Presign). Both share the canonical-request construction and the
// HMAC-SHA256 signing-key derivation chain.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// Algorithm is the SigV4 algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// EmptyPayloadHash is the precomputed SHA-256 hex digest of zero bytes.
	// Requests without a body must use this constant rather than hashing
	// an empty slice on the fly.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// UnsignedPayload is the sentinel payload hash used for presigned URLs.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// service is the service name folded into the credential scope.
	service = "s3"

	// terminator closes the credential scope.
	terminator = "aws4_request"

	amzDateFormat   = "20060102T150405Z"
	shortDateFormat = "20060102"
)

// Credentials holds the static key material used to sign requests.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Signer signs HTTP requests for one region with one set of credentials.
type Signer struct {
	creds  Credentials
	region string
}

// New creates a Signer for the given credentials and region.
func New(creds Credentials, region string) *Signer {
	return &Signer{creds: creds, region: region}
}

// HashPayload returns the SHA-256 hex digest of body, or EmptyPayloadHash
// when body is empty.
func HashPayload(body []byte) string {
	if len(body) == 0 {
		return EmptyPayloadHash
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Sign augments req with x-amz-date, x-amz-content-sha256, an optional
// x-amz-security-token, and the Authorization header. All headers present
// on the request at call time are included in the signature, so callers
// must set every header before signing. The same inputs and timestamp
// always produce the same Authorization value.
func (s *Signer) Sign(req *http.Request, payloadHash string, now time.Time) {
	now = now.UTC()
	amzDate := now.Format(amzDateFormat)
	shortDate := now.Format(shortDateFormat)

	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("x-amz-content-sha256", payloadHash)
	if s.creds.SessionToken != "" {
		req.Header.Set("x-amz-security-token", s.creds.SessionToken)
	}

	canonicalHeaders, signedHeaders := canonicalizeHeaders(req)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalPath(req.URL),
		canonicalQuery(req.URL.Query()),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{shortDate, s.region, service, terminator}, "/")
	signature := s.signature(canonicalRequest, amzDate, shortDate, scope)

	req.Header.Set("Authorization", Algorithm+
		" Credential="+s.creds.AccessKeyID+"/"+scope+
		", SignedHeaders="+signedHeaders+
		", Signature="+signature)
}

// Presign returns a copy of u carrying the full set of SigV4 query
// parameters for a URL valid for expires from now. The canonical request
// is built over UNSIGNED-PAYLOAD with host as the only signed header;
// every query parameter already on u (e.g. response-content-type
// overrides) participates in the signature.
func (s *Signer) Presign(method string, u *url.URL, host string, expires time.Duration, now time.Time) *url.URL {
	now = now.UTC()
	amzDate := now.Format(amzDateFormat)
	shortDate := now.Format(shortDateFormat)
	scope := strings.Join([]string{shortDate, s.region, service, terminator}, "/")

	signed := *u
	query := signed.Query()
	query.Set("X-Amz-Algorithm", Algorithm)
	query.Set("X-Amz-Credential", s.creds.AccessKeyID+"/"+scope)
	query.Set("X-Amz-Date", amzDate)
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(expires.Seconds()), 10))
	query.Set("X-Amz-SignedHeaders", "host")
	if s.creds.SessionToken != "" {
		query.Set("X-Amz-Security-Token", s.creds.SessionToken)
	}

	canonicalRequest := strings.Join([]string{
		method,
		canonicalPath(&signed),
		canonicalQuery(query),
		"host:" + host + "\n",
		"host",
		UnsignedPayload,
	}, "\n")

	// The signature is computed last, over all other query parameters.
	query.Set("X-Amz-Signature", s.signature(canonicalRequest, amzDate, shortDate, scope))
	signed.RawQuery = encodeQuery(query)
	return &signed
}

// signature hashes the canonical request, builds the string-to-sign, and
// runs the final HMAC with the derived signing key.
func (s *Signer) signature(canonicalRequest, amzDate, shortDate, scope string) string {
	stringToSign := strings.Join([]string{
		Algorithm,
		amzDate,
		scope,
		hashString(canonicalRequest),
	}, "\n")
	key := s.signingKey(shortDate)
	return hex.EncodeToString(hmacSHA256(key, stringToSign))
}

// signingKey derives the per-day signing key: a 4-step HMAC-SHA256 chain
// seeded with "AWS4"+secret, folding in date, region, service, and the
// terminator, in that order.
func (s *Signer) signingKey(shortDate string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+s.creds.SecretAccessKey), shortDate)
	kRegion := hmacSHA256(kDate, s.region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, terminator)
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// canonicalPath URI-encodes the request path once, preserving slashes.
// An empty path canonicalizes to "/".
func canonicalPath(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// canonicalQuery URL-encodes every query parameter and sorts by name
// (then by value for repeated names).
func canonicalQuery(query url.Values) string {
	return encodeQuery(query)
}

// encodeQuery renders query in SigV4 canonical form: keys sorted, every
// key and value percent-encoded with the AWS character set.
func encodeQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(uriEncode(k, true))
			b.WriteByte('=')
			b.WriteString(uriEncode(v, true))
		}
	}
	return b.String()
}

// canonicalizeHeaders lower-cases, trims, and sorts every request header
// (plus Host) and returns the canonical header block and the signed-header
// name list.
func canonicalizeHeaders(req *http.Request) (canonicalHeaders, signedHeaders string) {
	headers := map[string]string{
		"host": req.Host,
	}
	if headers["host"] == "" {
		headers["host"] = req.URL.Host
	}
	for name, values := range req.Header {
		lower := strings.ToLower(name)
		trimmed := make([]string, len(values))
		for i, v := range values {
			trimmed[i] = collapseSpaces(strings.TrimSpace(v))
		}
		headers[lower] = strings.Join(trimmed, ",")
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(headers[name])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";")
}

// collapseSpaces replaces runs of spaces inside a header value with one
// space, per the SigV4 canonicalization rules.
func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// EncodeQuery renders query exactly as the canonical form signs it, so
// URL builders can guarantee the bytes on the wire match the signature.
func EncodeQuery(query url.Values) string {
	return encodeQuery(query)
}

// EncodePath percent-encodes an object path with the SigV4 character rules,
// preserving slashes. URL builders use it to populate URL.RawPath so that
// the path sent on the wire is byte-identical to the path that was signed.
func EncodePath(path string) string {
	return uriEncode(path, false)
}

// uriEncode percent-encodes s with the SigV4 character rules: unreserved
// characters (A-Z, a-z, 0-9, '-', '_', '.', '~') pass through, space
// becomes %20, and '/' is preserved only when encodeSlash is false.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'),
			c == '-' || c == '_' || c == '.' || c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}
