// Package objectstore provides a client for S3-compatible object storage.
// It speaks the S3 REST protocol directly and signs every request with
// AWS Signature Version 4, so it works against AWS S3, MinIO, Ceph RGW,
// Cloudflare R2, and any other compatible provider without a vendor SDK.
//
// Key features:
//   - Object CRUD with conditional writes and reads
//   - Paginated listing with prefix and delimiter grouping
//   - Multipart uploads with concurrent part upload
//   - Presigned URLs computed locally, without network I/O
//   - Optional gzip compression of payloads
//   - Directory synchronization against a key prefix
//
// Example usage:
//
//	store, err := objectstore.New(objectstore.Config{
//	    Endpoint:        "s3.amazonaws.com",
//	    Region:          "us-east-1",
//	    Bucket:          "my-bucket",
//	    AccessKeyID:     accessKey,
//	    SecretAccessKey: secretKey,
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Store an object
//	md, err := store.Put(ctx, "path/file.txt", content)
//	if err != nil {
//	    return err
//	}
package objectstore
