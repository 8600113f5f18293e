package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocumentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{name: "valid jpeg", contentType: "image/jpeg"},
		{name: "valid jpg", contentType: "image/jpg"},
		{name: "valid png", contentType: "image/png"},
		{name: "valid pdf", contentType: "application/pdf"},
		{name: "valid with params", contentType: "application/pdf; charset=binary"},
		{name: "valid uppercase", contentType: "IMAGE/PNG"},
		{name: "invalid webp", contentType: "image/webp", wantErr: true},
		{name: "invalid gif", contentType: "image/gif", wantErr: true},
		{name: "invalid docx", contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantErr: true},
		{name: "empty", contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocumentSize(t *testing.T) {
	assert.NoError(t, ValidateDocumentSize(1))
	assert.NoError(t, ValidateDocumentSize(MaxDocumentSize))
	assert.Error(t, ValidateDocumentSize(MaxDocumentSize+1))
	assert.Error(t, ValidateDocumentSize(0))
}

func TestDocumentKey(t *testing.T) {
	key, err := DocumentKey("user-1", DocumentIDProof, "application/pdf")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^documents/user-1/idProof-[0-9a-f-]{36}\.pdf$`), key)

	key, err = DocumentKey("user-1", DocumentCertification, "image/jpeg")
	require.NoError(t, err)
	assert.Regexp(t, `\.jpg$`, key)

	_, err = DocumentKey("user-1", DocumentIDProof, "text/plain")
	assert.Error(t, err)
}

func TestParseDocumentKind(t *testing.T) {
	kind, ok := ParseDocumentKind("addressProof")
	assert.True(t, ok)
	assert.Equal(t, DocumentAddressProof, kind)

	_, ok = ParseDocumentKind("passport")
	assert.False(t, ok)
}

func TestNewClient_PublicURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{BucketName: "docs", Endpoint: "https://storage.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/docs", c.publicBase)

	c, err = NewClient(Config{BucketName: "docs", Region: "ap-south-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://docs.s3.ap-south-1.amazonaws.com", c.publicBase)

	c, err = NewClient(Config{BucketName: "docs", PublicBaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", c.publicBase)
}
