/**
 * @description
 * Multipart form encoding for file uploads (KYC documents, inspection
 * photos, signatures). Bodies are fully buffered in memory: upload sizes are
 * phone-photo scale, and a buffered body keeps the auth replay in client.go
 * byte-identical to the original request.
 */

package marketclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// UploadFile is one file part of a multipart submission.
type UploadFile struct {
	// Field is the form field name; defaults to "file" when empty.
	Field string
	// Name is the filename reported to the server.
	Name string
	// Content is the raw file content.
	Content []byte
}

// encodeMultipart builds a multipart/form-data body from plain fields and
// file parts.
func encodeMultipart(fields map[string]string, files []UploadFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", key, err)
		}
	}

	for _, file := range files {
		field := file.Field
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", file.Name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %q: %w", file.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
