// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

// Form is a multipart/form-data body under construction.
//
// Fields and files are written in the order they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	content  []byte
	isFile   bool
}

// FormFile is an uploaded file to forward to the backend.
type FormFile struct {
	Filename string
	Content  []byte
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set adds a text field.
func (f *Form) Set(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})

	return f
}

// SetFloat adds a numeric field using the shortest representation.
func (f *Form) SetFloat(name string, value float64) *Form {
	return f.Set(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// SetInt adds an integer field.
func (f *Form) SetInt(name string, value int) *Form {
	return f.Set(name, strconv.Itoa(value))
}

// SetBool adds a boolean field as "true" or "false".
func (f *Form) SetBool(name string, value bool) *Form {
	return f.Set(name, strconv.FormatBool(value))
}

// SetOptional adds a text field only when value is non-empty.
func (f *Form) SetOptional(name, value string) *Form {
	if value == "" {
		return f
	}

	return f.Set(name, value)
}

// AddFile adds a file part. The part's content type is sniffed from the data.
func (f *Form) AddFile(name string, file FormFile) *Form {
	f.parts = append(f.parts, formPart{
		name:     name,
		filename: file.Filename,
		content:  file.Content,
		isFile:   true,
	})

	return f
}

// Value returns the first text field called name.
func (f *Form) Value(name string) (string, bool) {
	for _, p := range f.parts {
		if !p.isFile && p.name == name {
			return p.value, true
		}
	}

	return "", false
}

// encode writes the form and returns the body with its content type.
func (f *Form) encode() (io.Reader, string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	for _, p := range f.parts {
		if !p.isFile {
			if err := writer.WriteField(p.name, p.value); err != nil {
				_ = writer.Close()

				return nil, "", fmt.Errorf("failed to write multipart form field %q: %w", p.name, err)
			}

			continue
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.name), quoteEscaper.Replace(p.filename)))
		header.Set("Content-Type", http.DetectContentType(p.content))

		part, err := writer.CreatePart(header)
		if err != nil {
			_ = writer.Close()

			return nil, "", fmt.Errorf("failed to create multipart file %q: %w", p.filename, err)
		}

		if _, err := part.Write(p.content); err != nil {
			_ = writer.Close()

			return nil, "", fmt.Errorf("failed to write multipart file %q: %w", p.filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
