// Package internal contains private implementation details for the objectstore module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - signer: AWS Signature Version 4 request signing and URL presigning
//   - transport: single-attempt HTTP execution with typed failure mapping
//   - wire: S3 XML request/response encoding for the restricted tag set in scope
//   - validation: key normalization and input validation logic
//   - retry: bounded retry with exponential backoff for retryable failures
//   - testutil: in-process fake S3 server and test helpers
package internal
