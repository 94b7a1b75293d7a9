package blobstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreUploadOverwrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "http://files.local/")
	require.NoError(t, err)
	ctx := context.Background()

	u, err := s.Upload(ctx, "payment-proofs", "proof.pdf", []byte("v1"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/files/payment-proofs/proof.pdf", u)

	_, err = s.Upload(ctx, "payment-proofs", "proof.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)

	path, err := s.Path("payment-proofs", "proof.pdf")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)
	for _, name := range []string{"../etc/passwd", "a/b", "..", ""} {
		_, err := s.Upload(context.Background(), "c", name, []byte("x"), "")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	u, err := s.Upload(context.Background(), "product-images", "a b.jpg", []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/files/product-images/a%20b.jpg", u)
	b, ok := s.Get("product-images", "a b.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", b.ContentType)
}
