// Package wire encodes and decodes the narrow S3 XML dialect this module
// speaks. Only the tag set consumed by the client is modeled: Contents,
// CommonPrefixes, IsTruncated, NextContinuationToken, UploadId, ETag, and
// the CompleteMultipartUpload / Delete request bodies. Missing optional
// fields are left zero-valued rather than failing the parse, which keeps
// the client tolerant of dialect differences between providers.
package wire

import (
	"encoding/xml"
	"sort"
	"time"
)

// ListBucketResult is a ListObjectsV2 response.
type ListBucketResult struct {
	XMLName               xml.Name       `xml:"ListBucketResult"`
	Contents              []Contents     `xml:"Contents"`
	CommonPrefixes        []CommonPrefix `xml:"CommonPrefixes"`
	IsTruncated           bool           `xml:"IsTruncated"`
	NextContinuationToken string         `xml:"NextContinuationToken"`
}

// Contents is one object entry in a list response.
type Contents struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

// ModTime parses the entry's LastModified timestamp; the zero time is
// returned when the field is absent or malformed.
func (c Contents) ModTime() time.Time {
	ts, err := time.Parse(time.RFC3339, c.LastModified)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// CommonPrefix is one rolled-up prefix in a delimited list response.
type CommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

// ParseList decodes a ListObjectsV2 response body.
func ParseList(body []byte) (*ListBucketResult, error) {
	var result ListBucketResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InitiateMultipartUploadResult is the response to POST key?uploads.
type InitiateMultipartUploadResult struct {
	XMLName  xml.Name `xml:"InitiateMultipartUploadResult"`
	Bucket   string   `xml:"Bucket"`
	Key      string   `xml:"Key"`
	UploadID string   `xml:"UploadId"`
}

// ParseInitiateMultipartUpload extracts the upload ID from a
// multipart-initiate response.
func ParseInitiateMultipartUpload(body []byte) (string, error) {
	var result InitiateMultipartUploadResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return "", err
	}
	return result.UploadID, nil
}

// CompletedPart is one (PartNumber, ETag) pair in a multipart completion.
type CompletedPart struct {
	PartNumber int    `xml:"PartNumber"`
	ETag       string `xml:"ETag"`
}

// completeMultipartUpload is the POST key?uploadId request body.
type completeMultipartUpload struct {
	XMLName xml.Name        `xml:"CompleteMultipartUpload"`
	Parts   []CompletedPart `xml:"Part"`
}

// BuildCompleteMultipartUpload renders the completion body with parts
// sorted strictly ascending by part number, regardless of upload order.
func BuildCompleteMultipartUpload(parts []CompletedPart) ([]byte, error) {
	sorted := append([]CompletedPart(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })
	return xml.Marshal(completeMultipartUpload{Parts: sorted})
}

// CopyObjectResult is the body of a successful server-side copy.
type CopyObjectResult struct {
	XMLName      xml.Name `xml:"CopyObjectResult"`
	ETag         string   `xml:"ETag"`
	LastModified string   `xml:"LastModified"`
}

// ParseCopyObject decodes a CopyObject response body.
func ParseCopyObject(body []byte) (*CopyObjectResult, error) {
	var result CopyObjectResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ErrorResponse is the S3 error envelope carried on non-2xx responses.
type ErrorResponse struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

// ParseError best-effort decodes an S3 error body. It never fails: a body
// that is not the expected envelope yields empty code and message.
func ParseError(body []byte) (code, message string) {
	var e ErrorResponse
	if err := xml.Unmarshal(body, &e); err != nil {
		return "", ""
	}
	return e.Code, e.Message
}

// deleteBatch is the POST /?delete request body.
type deleteBatch struct {
	XMLName xml.Name       `xml:"Delete"`
	Quiet   bool           `xml:"Quiet"`
	Objects []deleteObject `xml:"Object"`
}

type deleteObject struct {
	Key string `xml:"Key"`
}

// BuildDeleteBatch renders a batch-delete request body for the given keys.
func BuildDeleteBatch(keys []string) ([]byte, error) {
	batch := deleteBatch{Objects: make([]deleteObject, 0, len(keys))}
	for _, key := range keys {
		batch.Objects = append(batch.Objects, deleteObject{Key: key})
	}
	return xml.Marshal(batch)
}

// DeleteResult is the response to a batch delete.
type DeleteResult struct {
	XMLName xml.Name      `xml:"DeleteResult"`
	Deleted []DeletedItem `xml:"Deleted"`
	Errors  []DeleteError `xml:"Error"`
}

// DeletedItem is one successfully deleted key.
type DeletedItem struct {
	Key string `xml:"Key"`
}

// DeleteError is one per-key failure inside a batch delete.
type DeleteError struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// ParseDeleteResult decodes a batch-delete response body.
func ParseDeleteResult(body []byte) (*DeleteResult, error) {
	var result DeleteResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
