package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/imaging"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

var errFileTooLarge = errors.New("file too large")

// parseMultipart caps the request body at limit bytes and parses it.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("parse multipart: %w", err)
	}
	return nil
}

// readUpload reads one uploaded file of at most limit bytes. The content
// type is sniffed from the bytes, not taken from the client.
func readUpload(fh *multipart.FileHeader, limit int64) (catalog.File, error) {
	f, err := fh.Open()
	if err != nil {
		return catalog.File{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return catalog.File{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > limit {
		return catalog.File{}, errFileTooLarge
	}
	return catalog.File{
		Name:        fh.Filename,
		ContentType: imaging.Sniff(data, fh.Filename),
		Data:        data,
	}, nil
}

// formFile returns the single file posted under field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// splitValues splits a comma or newline separated list. The composer trims
// the entries and drops blank ones.
func splitValues(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
}
