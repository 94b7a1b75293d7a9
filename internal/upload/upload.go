// Package upload extracts a single file from an HTTP request, either a
// multipart form part or the raw request body.
package upload

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
)

const MaxSize = 20 << 20

var (
	ErrNoFile   = errors.New("no file provided")
	ErrTooLarge = errors.New("file exceeds upload limit")
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// DefaultName builds a file name from the extension guessed for the content type.
type DefaultName func(ext string) string

var dispositionFilename = regexp.MustCompile(`(?i)filename\*?=([^;]+)`)

// Read pulls the uploaded file out of r. The name comes from, in order: the
// fileName query parameter, the multipart part's filename, the
// Content-Disposition header, and finally def.
func Read(r *http.Request, def DefaultName) (*File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var f File
	if strings.HasPrefix(mediaType, "multipart/") {
		part, err := readMultipart(r)
		if err != nil {
			return nil, err
		}
		f = *part
	} else {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > MaxSize {
			return nil, ErrTooLarge
		}
		f.Data = data
		f.ContentType = r.Header.Get("Content-Type")
	}
	if len(f.Data) == 0 {
		return nil, ErrNoFile
	}

	name := sanitize(r.URL.Query().Get("fileName"))
	if name == "" {
		name = sanitize(f.Name)
	}
	if name == "" {
		name = sanitize(filenameFromDisposition(r.Header.Get("Content-Disposition")))
	}
	if name == "" {
		name = def(ExtensionFor(f.ContentType))
	}
	f.Name = name
	if f.ContentType == "" {
		f.ContentType = "application/octet-stream"
	}
	return &f, nil
}

func readMultipart(r *http.Request) (*File, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxSize+1<<20)
	if err := r.ParseMultipartForm(MaxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrTooLarge
		}
		return nil, err
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return nil, ErrNoFile
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		for _, hs := range r.MultipartForm.File {
			if len(hs) > 0 {
				headers = hs
				break
			}
		}
	}
	if len(headers) == 0 {
		return nil, ErrNoFile
	}
	fh := headers[0]
	if fh.Size > MaxSize {
		return nil, ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	m := dispositionFilename.FindStringSubmatch(header)
	if len(m) < 2 {
		return ""
	}
	name := strings.Trim(strings.TrimSpace(m[1]), `"`)
	if i := strings.Index(name, "''"); i >= 0 {
		name = name[i+2:]
	}
	return name
}

// sanitize keeps only the final path element of a client-supplied name.
func sanitize(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

var extensions = map[string]string{
	"application/pdf":    ".pdf",
	"image/jpeg":         ".jpg",
	"image/jpg":          ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"text/plain":         ".txt",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// ExtensionFor guesses a file extension from a content type, defaulting to .dat.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if ext, ok := extensions[mediaType]; ok {
		return ext
	}
	return ".dat"
}
