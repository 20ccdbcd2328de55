package api

import (
	"fmt"
	"io"
	"mime/multipart"
)

type formFile struct {
	field    string
	filename string
	r        io.Reader
}

// Form is a multipart/form-data payload for PostWithMedia.
type Form struct {
	fields [][2]string
	files  []formFile
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a text field.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, r: r})
	return f
}

// writeTo encodes the form and returns the content type carrying the boundary.
func (f *Form) writeTo(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, kv := range f.fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return "", fmt.Errorf("write field %q: %w", kv[0], err)
		}
	}
	for _, file := range f.files {
		part, err := mw.CreateFormFile(file.field, file.filename)
		if err != nil {
			return "", fmt.Errorf("create part %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.r); err != nil {
			return "", fmt.Errorf("copy %q: %w", file.filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}
	return mw.FormDataContentType(), nil
}
