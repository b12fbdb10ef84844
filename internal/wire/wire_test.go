package wire

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList_FullResponse(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>media</Name>
  <Prefix>images/</Prefix>
  <IsTruncated>true</IsTruncated>
  <NextContinuationToken>1ueGcxLPRx1Tr</NextContinuationToken>
  <Contents>
    <Key>images/cat.png</Key>
    <LastModified>2024-03-01T12:30:45.000Z</LastModified>
    <ETag>&quot;70ee1738b6b21e2c8a43f3a5ab0eee71&quot;</ETag>
    <Size>409600</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>images/dog.png</Key>
    <LastModified>2024-03-02T08:00:00.000Z</LastModified>
    <ETag>&quot;9c8af9a76df052144598c115ef33471e&quot;</ETag>
    <Size>1024</Size>
    <StorageClass>STANDARD_IA</StorageClass>
  </Contents>
  <CommonPrefixes>
    <Prefix>images/thumbs/</Prefix>
  </CommonPrefixes>
</ListBucketResult>`)

	result, err := ParseList(body)
	require.NoError(t, err)

	assert.True(t, result.IsTruncated)
	assert.Equal(t, "1ueGcxLPRx1Tr", result.NextContinuationToken)
	require.Len(t, result.Contents, 2)
	assert.Equal(t, "images/cat.png", result.Contents[0].Key)
	assert.Equal(t, int64(409600), result.Contents[0].Size)
	assert.Equal(t, `"70ee1738b6b21e2c8a43f3a5ab0eee71"`, result.Contents[0].ETag)
	assert.Equal(t, "STANDARD_IA", result.Contents[1].StorageClass)
	assert.Equal(t,
		time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
		result.Contents[0].ModTime())
	require.Len(t, result.CommonPrefixes, 1)
	assert.Equal(t, "images/thumbs/", result.CommonPrefixes[0].Prefix)
}

// Providers differ in which optional tags they emit; absent fields must
// stay zero-valued instead of failing the parse.
func TestParseList_MinimalDialect(t *testing.T) {
	body := []byte(`<ListBucketResult>
  <Contents><Key>a.txt</Key><Size>5</Size></Contents>
</ListBucketResult>`)

	result, err := ParseList(body)
	require.NoError(t, err)

	assert.False(t, result.IsTruncated)
	assert.Empty(t, result.NextContinuationToken)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "a.txt", result.Contents[0].Key)
	assert.Empty(t, result.Contents[0].ETag)
	assert.True(t, result.Contents[0].ModTime().IsZero())
}

func TestParseInitiateMultipartUpload(t *testing.T) {
	body := []byte(`<InitiateMultipartUploadResult>
  <Bucket>media</Bucket>
  <Key>big.bin</Key>
  <UploadId>VXBsb2FkIElEIGZvciBlbHZpbmc</UploadId>
</InitiateMultipartUploadResult>`)

	uploadID, err := ParseInitiateMultipartUpload(body)
	require.NoError(t, err)
	assert.Equal(t, "VXBsb2FkIElEIGZvciBlbHZpbmc", uploadID)
}

func TestBuildCompleteMultipartUpload_SortsByPartNumber(t *testing.T) {
	body, err := BuildCompleteMultipartUpload([]CompletedPart{
		{PartNumber: 3, ETag: `"c"`},
		{PartNumber: 1, ETag: `"a"`},
		{PartNumber: 2, ETag: `"b"`},
	})
	require.NoError(t, err)

	xml := string(body)
	assert.Less(t, indexOf(t, xml, "<PartNumber>1</PartNumber>"), indexOf(t, xml, "<PartNumber>2</PartNumber>"))
	assert.Less(t, indexOf(t, xml, "<PartNumber>2</PartNumber>"), indexOf(t, xml, "<PartNumber>3</PartNumber>"))
	assert.Contains(t, xml, "<CompleteMultipartUpload>")
}

func TestParseCopyObject(t *testing.T) {
	body := []byte(`<CopyObjectResult>
  <ETag>&quot;6805f2cfc46c0f04559748bb039d69ae&quot;</ETag>
  <LastModified>2024-05-01T00:00:00.000Z</LastModified>
</CopyObjectResult>`)

	result, err := ParseCopyObject(body)
	require.NoError(t, err)
	assert.Equal(t, `"6805f2cfc46c0f04559748bb039d69ae"`, result.ETag)
}

func TestParseError(t *testing.T) {
	code, message := ParseError([]byte(`<Error>
  <Code>NoSuchKey</Code>
  <Message>The specified key does not exist.</Message>
</Error>`))
	assert.Equal(t, "NoSuchKey", code)
	assert.Equal(t, "The specified key does not exist.", message)

	code, message = ParseError([]byte("not xml at all"))
	assert.Empty(t, code)
	assert.Empty(t, message)
}

func TestDeleteBatchRoundTrip(t *testing.T) {
	body, err := BuildDeleteBatch([]string{"a.txt", "b/c.txt"})
	require.NoError(t, err)
	assert.Contains(t, string(body), "<Key>a.txt</Key>")
	assert.Contains(t, string(body), "<Key>b/c.txt</Key>")

	result, err := ParseDeleteResult([]byte(`<DeleteResult>
  <Deleted><Key>a.txt</Key></Deleted>
  <Error><Key>b/c.txt</Key><Code>AccessDenied</Code><Message>denied</Message></Error>
</DeleteResult>`))
	require.NoError(t, err)
	require.Len(t, result.Deleted, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "AccessDenied", result.Errors[0].Code)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected %q in %q", needle, haystack)
	return idx
}
