// Package testutil provides an in-memory S3-compatible server for tests.
// It implements just enough of the REST protocol to exercise the client:
// object CRUD, conditional requests, V2 listing with pagination, multipart
// uploads, and batch delete. Signatures are accepted without verification;
// tests that need signature checks assert on the recorded requests.
package testutil

import (
	"crypto/md5"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// StoredObject is one object held by the fake server.
type StoredObject struct {
	Data         []byte
	ContentType  string
	Encoding     string
	CacheControl string
	Disposition  string
	StorageClass string
	Metadata     map[string]string
	ETag         string
	LastModified time.Time
}

// RecordedRequest captures one request the fake server handled.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type multipartUpload struct {
	key   string
	parts map[int][]byte
}

// FakeS3 is an in-memory S3-compatible server for a single bucket.
type FakeS3 struct {
	mu       sync.Mutex
	bucket   string
	objects  map[string]*StoredObject
	uploads  map[string]*multipartUpload
	nextID   int
	requests []RecordedRequest

	server *httptest.Server
}

// NewFakeS3 starts an in-memory server backing the given bucket. Callers
// must Close it when done.
func NewFakeS3(bucket string) *FakeS3 {
	f := &FakeS3{
		bucket:  bucket,
		objects: make(map[string]*StoredObject),
		uploads: make(map[string]*multipartUpload),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the server's base URL.
func (f *FakeS3) URL() string {
	return f.server.URL
}

// Close shuts the server down.
func (f *FakeS3) Close() {
	f.server.Close()
}

// Object returns the stored object for key, or nil.
func (f *FakeS3) Object(key string) *StoredObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

// PutObject seeds an object directly, bypassing the HTTP surface.
func (f *FakeS3) PutObject(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = &StoredObject{
		Data:         data,
		ContentType:  "application/octet-stream",
		ETag:         etagOf(data),
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
}

// Requests returns a copy of every recorded request, in order.
func (f *FakeS3) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent recorded request.
func (f *FakeS3) LastRequest() *RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	r := f.requests[len(f.requests)-1]
	return &r
}

// ObjectCount reports how many objects the bucket holds.
func (f *FakeS3) ObjectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *FakeS3) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})

	key, ok := f.objectKey(r.URL.Path)
	if !ok {
		writeErrorXML(w, http.StatusNotFound, "NoSuchBucket", "bucket mismatch")
		return
	}
	query := r.URL.Query()

	switch {
	case r.Method == http.MethodPost && query.Has("uploads"):
		f.initiateUpload(w, key)
	case r.Method == http.MethodPut && query.Has("uploadId"):
		f.uploadPart(w, query, body)
	case r.Method == http.MethodPost && query.Has("uploadId"):
		f.completeUpload(w, query, body)
	case r.Method == http.MethodDelete && query.Has("uploadId"):
		f.abortUpload(w, query)
	case r.Method == http.MethodPost && query.Has("delete"):
		f.batchDelete(w, body)
	case r.Method == http.MethodGet && key == "":
		f.list(w, query)
	case r.Method == http.MethodPut && r.Header.Get("x-amz-copy-source") != "":
		f.copyObject(w, r, key)
	case r.Method == http.MethodPut:
		f.putObject(w, r, key, body)
	case r.Method == http.MethodGet:
		f.getObject(w, r, key)
	case r.Method == http.MethodHead:
		f.headObject(w, key)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrorXML(w, http.StatusMethodNotAllowed, "MethodNotAllowed", r.Method)
	}
}

// objectKey strips the bucket segment from path-style requests.
func (f *FakeS3) objectKey(path string) (string, bool) {
	path = strings.TrimPrefix(path, "/")
	if path == f.bucket {
		return "", true
	}
	if !strings.HasPrefix(path, f.bucket+"/") {
		return "", false
	}
	return strings.TrimPrefix(path, f.bucket+"/"), true
}

func (f *FakeS3) putObject(w http.ResponseWriter, r *http.Request, key string, body []byte) {
	_, exists := f.objects[key]
	if r.Header.Get("If-None-Match") == "*" && exists {
		writeErrorXML(w, http.StatusPreconditionFailed, "PreconditionFailed", "object exists")
		return
	}
	if match := r.Header.Get("If-Match"); match != "" {
		if !exists || strings.Trim(match, `"`) != strings.Trim(f.objects[key].ETag, `"`) {
			writeErrorXML(w, http.StatusPreconditionFailed, "PreconditionFailed", "etag mismatch")
			return
		}
	}

	obj := &StoredObject{
		Data:         body,
		ContentType:  r.Header.Get("Content-Type"),
		Encoding:     r.Header.Get("Content-Encoding"),
		CacheControl: r.Header.Get("Cache-Control"),
		Disposition:  r.Header.Get("Content-Disposition"),
		StorageClass: r.Header.Get("x-amz-storage-class"),
		ETag:         etagOf(body),
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
	for name, vs := range r.Header {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "x-amz-meta-") && len(vs) > 0 {
			if obj.Metadata == nil {
				obj.Metadata = make(map[string]string)
			}
			obj.Metadata[strings.TrimPrefix(lower, "x-amz-meta-")] = vs[0]
		}
	}
	f.objects[key] = obj

	w.Header().Set("ETag", obj.ETag)
	w.WriteHeader(http.StatusOK)
}

func (f *FakeS3) copyObject(w http.ResponseWriter, r *http.Request, dstKey string) {
	src := r.Header.Get("x-amz-copy-source")
	src = strings.TrimPrefix(src, "/")
	src = strings.TrimPrefix(src, f.bucket+"/")

	obj, ok := f.objects[src]
	if !ok {
		writeErrorXML(w, http.StatusNotFound, "NoSuchKey", "source not found")
		return
	}

	dst := &StoredObject{
		Data:         append([]byte(nil), obj.Data...),
		ContentType:  obj.ContentType,
		Encoding:     obj.Encoding,
		CacheControl: obj.CacheControl,
		Disposition:  obj.Disposition,
		StorageClass: obj.StorageClass,
		ETag:         obj.ETag,
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
	if len(obj.Metadata) > 0 {
		dst.Metadata = make(map[string]string, len(obj.Metadata))
		for k, v := range obj.Metadata {
			dst.Metadata[k] = v
		}
	}

	if r.Header.Get("x-amz-metadata-directive") == "REPLACE" {
		dst.Metadata = nil
		for name, vs := range r.Header {
			lower := strings.ToLower(name)
			if strings.HasPrefix(lower, "x-amz-meta-") && len(vs) > 0 {
				if dst.Metadata == nil {
					dst.Metadata = make(map[string]string)
				}
				dst.Metadata[strings.TrimPrefix(lower, "x-amz-meta-")] = vs[0]
			}
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			dst.ContentType = ct
		}
		if cc := r.Header.Get("Cache-Control"); cc != "" {
			dst.CacheControl = cc
		}
	}
	if sc := r.Header.Get("x-amz-storage-class"); sc != "" {
		dst.StorageClass = sc
	}
	f.objects[dstKey] = dst

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w, `<CopyObjectResult><ETag>%s</ETag><LastModified>%s</LastModified></CopyObjectResult>`,
		dst.ETag, dst.LastModified.Format(time.RFC3339))
}

func (f *FakeS3) getObject(w http.ResponseWriter, r *http.Request, key string) {
	obj, ok := f.objects[key]
	if !ok {
		writeErrorXML(w, http.StatusNotFound, "NoSuchKey", "no such key")
		return
	}

	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil && !obj.LastModified.After(t) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if strings.Trim(inm, `"`) == strings.Trim(obj.ETag, `"`) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	data := obj.Data
	status := http.StatusOK
	if rng := r.Header.Get("Range"); rng != "" {
		start, end, ok := parseRange(rng, int64(len(data)))
		if !ok {
			writeErrorXML(w, http.StatusRequestedRangeNotSatisfiable, "InvalidRange", rng)
			return
		}
		data = data[start : end+1]
		status = http.StatusPartialContent
	}

	f.writeObjectHeaders(w, obj)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	w.Write(data)
}

func (f *FakeS3) headObject(w http.ResponseWriter, key string) {
	obj, ok := f.objects[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f.writeObjectHeaders(w, obj)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
}

func (f *FakeS3) writeObjectHeaders(w http.ResponseWriter, obj *StoredObject) {
	h := w.Header()
	h.Set("ETag", obj.ETag)
	h.Set("Last-Modified", obj.LastModified.Format(http.TimeFormat))
	if obj.ContentType != "" {
		h.Set("Content-Type", obj.ContentType)
	}
	if obj.Encoding != "" {
		h.Set("Content-Encoding", obj.Encoding)
	}
	if obj.CacheControl != "" {
		h.Set("Cache-Control", obj.CacheControl)
	}
	if obj.Disposition != "" {
		h.Set("Content-Disposition", obj.Disposition)
	}
	if obj.StorageClass != "" {
		h.Set("x-amz-storage-class", obj.StorageClass)
	}
	for k, v := range obj.Metadata {
		h.Set("x-amz-meta-"+k, v)
	}
}

func (f *FakeS3) list(w http.ResponseWriter, query map[string][]string) {
	get := func(name string) string {
		if vs := query[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	prefix := get("prefix")
	delimiter := get("delimiter")
	startAfter := get("start-after")
	token := get("continuation-token")

	maxKeys := 1000
	if mk := get("max-keys"); mk != "" {
		if n, err := strconv.Atoi(mk); err == nil && n > 0 {
			maxKeys = n
		}
	}

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	after := startAfter
	if token != "" {
		after = token
	}

	var contents []string
	prefixes := make(map[string]bool)
	truncated := false
	nextToken := ""
	for _, k := range keys {
		if after != "" && k <= after {
			continue
		}
		if delimiter != "" {
			rest := strings.TrimPrefix(k, prefix)
			if i := strings.Index(rest, delimiter); i >= 0 {
				prefixes[prefix+rest[:i+len(delimiter)]] = true
				continue
			}
		}
		if len(contents) == maxKeys {
			truncated = true
			nextToken = contents[len(contents)-1]
			break
		}
		contents = append(contents, k)
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	fmt.Fprintf(&sb, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><IsTruncated>%t</IsTruncated>",
		f.bucket, prefix, len(contents), truncated)
	if nextToken != "" {
		fmt.Fprintf(&sb, "<NextContinuationToken>%s</NextContinuationToken>", xmlEscape(nextToken))
	}
	for _, k := range contents {
		obj := f.objects[k]
		fmt.Fprintf(&sb,
			"<Contents><Key>%s</Key><Size>%d</Size><ETag>%s</ETag><LastModified>%s</LastModified><StorageClass>%s</StorageClass></Contents>",
			xmlEscape(k), len(obj.Data), obj.ETag, obj.LastModified.Format(time.RFC3339), obj.StorageClass)
	}
	sortedPrefixes := make([]string, 0, len(prefixes))
	for p := range prefixes {
		sortedPrefixes = append(sortedPrefixes, p)
	}
	sort.Strings(sortedPrefixes)
	for _, p := range sortedPrefixes {
		fmt.Fprintf(&sb, "<CommonPrefixes><Prefix>%s</Prefix></CommonPrefixes>", xmlEscape(p))
	}
	sb.WriteString("</ListBucketResult>")

	w.Header().Set("Content-Type", "application/xml")
	io.WriteString(w, sb.String())
}

func (f *FakeS3) initiateUpload(w http.ResponseWriter, key string) {
	f.nextID++
	id := fmt.Sprintf("upload-%d", f.nextID)
	f.uploads[id] = &multipartUpload{key: key, parts: make(map[int][]byte)}

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w,
		`<InitiateMultipartUploadResult><Bucket>%s</Bucket><Key>%s</Key><UploadId>%s</UploadId></InitiateMultipartUploadResult>`,
		f.bucket, xmlEscape(key), id)
}

func (f *FakeS3) uploadPart(w http.ResponseWriter, query map[string][]string, body []byte) {
	id := first(query["uploadId"])
	up, ok := f.uploads[id]
	if !ok {
		writeErrorXML(w, http.StatusNotFound, "NoSuchUpload", id)
		return
	}
	partNumber, err := strconv.Atoi(first(query["partNumber"]))
	if err != nil || partNumber < 1 {
		writeErrorXML(w, http.StatusBadRequest, "InvalidPart", "bad part number")
		return
	}
	up.parts[partNumber] = append([]byte(nil), body...)

	w.Header().Set("ETag", etagOf(body))
	w.WriteHeader(http.StatusOK)
}

// completeXML mirrors the request body sent on completion so the fake
// can honor the caller's part ordering.
type completeXML struct {
	Parts []struct {
		PartNumber int    `xml:"PartNumber"`
		ETag       string `xml:"ETag"`
	} `xml:"Part"`
}

func (f *FakeS3) completeUpload(w http.ResponseWriter, query map[string][]string, body []byte) {
	id := first(query["uploadId"])
	up, ok := f.uploads[id]
	if !ok {
		writeErrorXML(w, http.StatusNotFound, "NoSuchUpload", id)
		return
	}

	var req completeXML
	if err := xml.Unmarshal(body, &req); err != nil || len(req.Parts) == 0 {
		writeErrorXML(w, http.StatusBadRequest, "MalformedXML", "bad completion body")
		return
	}

	var data []byte
	last := 0
	for _, p := range req.Parts {
		if p.PartNumber <= last {
			writeErrorXML(w, http.StatusBadRequest, "InvalidPartOrder", "parts out of order")
			return
		}
		chunk, ok := up.parts[p.PartNumber]
		if !ok {
			writeErrorXML(w, http.StatusBadRequest, "InvalidPart", strconv.Itoa(p.PartNumber))
			return
		}
		data = append(data, chunk...)
		last = p.PartNumber
	}

	f.objects[up.key] = &StoredObject{
		Data:         data,
		ContentType:  "application/octet-stream",
		ETag:         etagOf(data),
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
	delete(f.uploads, id)

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w,
		`<CompleteMultipartUploadResult><Bucket>%s</Bucket><Key>%s</Key><ETag>%s</ETag></CompleteMultipartUploadResult>`,
		f.bucket, xmlEscape(up.key), f.objects[up.key].ETag)
}

func (f *FakeS3) abortUpload(w http.ResponseWriter, query map[string][]string) {
	delete(f.uploads, first(query["uploadId"]))
	w.WriteHeader(http.StatusNoContent)
}

type deleteBatchXML struct {
	Objects []struct {
		Key string `xml:"Key"`
	} `xml:"Object"`
}

func (f *FakeS3) batchDelete(w http.ResponseWriter, body []byte) {
	var req deleteBatchXML
	if err := xml.Unmarshal(body, &req); err != nil {
		writeErrorXML(w, http.StatusBadRequest, "MalformedXML", "bad delete body")
		return
	}

	var sb strings.Builder
	sb.WriteString("<DeleteResult>")
	for _, o := range req.Objects {
		delete(f.objects, o.Key)
		fmt.Fprintf(&sb, "<Deleted><Key>%s</Key></Deleted>", xmlEscape(o.Key))
	}
	sb.WriteString("</DeleteResult>")

	w.Header().Set("Content-Type", "application/xml")
	io.WriteString(w, sb.String())
}

func writeErrorXML(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<Error><Code>%s</Code><Message>%s</Message></Error>`, code, xmlEscape(message))
}

func etagOf(data []byte) string {
	return fmt.Sprintf(`"%x"`, md5.Sum(data))
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func xmlEscape(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// parseRange handles the single-range form "bytes=start-end" with an
// optional open end.
func parseRange(spec string, size int64) (start, end int64, ok bool) {
	spec = strings.TrimPrefix(spec, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	if parts[1] == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}
