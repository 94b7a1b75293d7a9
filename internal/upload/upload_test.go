package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedName(ext string) string { return "file_generated" + ext }

func TestReadRawBodyUsesQueryName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/upload?fileName=proof.pdf", strings.NewReader("%PDF"))
	r.Header.Set("Content-Type", "application/pdf")
	r.Header.Set("Content-Disposition", `attachment; filename="other.pdf"`)

	f, err := Read(r, fixedName)
	require.NoError(t, err)
	assert.Equal(t, "proof.pdf", f.Name)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, "%PDF", string(f.Data))
}

func TestReadRawBodyFallsBackToDisposition(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("data"))
	r.Header.Set("Content-Disposition", `attachment; filename="../../receipt.png"`)

	f, err := Read(r, fixedName)
	require.NoError(t, err)
	assert.Equal(t, "receipt.png", f.Name)
}

func TestReadRawBodyGeneratesName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("data"))
	r.Header.Set("Content-Type", "image/png")

	f, err := Read(r, fixedName)
	require.NoError(t, err)
	assert.Equal(t, "file_generated.png", f.Name)
}

func TestReadEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/upload", http.NoBody)
	_, err := Read(r, fixedName)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestReadMultipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="C:\\docs\\slip.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpegdata"))
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())

	f, err := Read(r, fixedName)
	require.NoError(t, err)
	assert.Equal(t, "slip.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.ContentType)
	assert.Equal(t, "jpegdata", string(f.Data))
}

func TestFilenameFromDispositionRFC5987(t *testing.T) {
	assert.Equal(t, "résumé.pdf", filenameFromDisposition(`attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`))
	assert.Equal(t, "plain.txt", filenameFromDisposition(`filename=plain.txt`))
	assert.Equal(t, "", filenameFromDisposition(""))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".pdf", ExtensionFor("application/pdf"))
	assert.Equal(t, ".jpg", ExtensionFor("image/jpeg"))
	assert.Equal(t, ".txt", ExtensionFor("text/plain; charset=utf-8"))
	assert.Equal(t, ".doc", ExtensionFor("application/msword"))
	assert.Equal(t, ".docx", ExtensionFor("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, ".dat", ExtensionFor("application/zip"))
	assert.Equal(t, ".dat", ExtensionFor(""))
}
