package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain key", in: "a/b/c.txt", want: "a/b/c.txt"},
		{name: "leading slash", in: "/a/b", want: "a/b"},
		{name: "many leading slashes", in: "///a/b", want: "a/b"},
		{name: "duplicate separators", in: "a//b///c", want: "a/b/c"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKey(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeKey(got), "normalization must be idempotent")
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid key", key: "dir/file.txt"},
		{name: "unicode key", key: "docs/résumé.pdf"},
		{name: "empty", key: "", wantErr: true},
		{name: "traversal segment", key: "a/../b", wantErr: true},
		{name: "dotdot as whole key", key: "..", wantErr: true},
		{name: "dotdot inside name is fine", key: "a..b/c"},
		{name: "too long", key: strings.Repeat("k", 1025), wantErr: true},
		{name: "max length", key: strings.Repeat("k", 1024)},
		{name: "control character", key: "a\nb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid", bucket: "my-bucket"},
		{name: "with dots", bucket: "my.bucket.v2"},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "too long", bucket: strings.Repeat("b", 64), wantErr: true},
		{name: "uppercase", bucket: "MyBucket", wantErr: true},
		{name: "underscore", bucket: "my_bucket", wantErr: true},
		{name: "leading hyphen", bucket: "-bucket", wantErr: true},
		{name: "trailing dot", bucket: "bucket.", wantErr: true},
		{name: "adjacent dots", bucket: "my..bucket", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata(nil))
	assert.NoError(t, ValidateMetadata(map[string]string{"owner": "platform-team"}))

	assert.Error(t, ValidateMetadata(map[string]string{"": "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{strings.Repeat("k", 129): "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{"bad key": "v"}))
	assert.Error(t, ValidateMetadata(map[string]string{"k": strings.Repeat("v", 2049)}))
	assert.Error(t, ValidateMetadata(map[string]string{"k": "a\x01b"}))
}
