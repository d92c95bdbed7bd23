package ingest

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// Text field values are capped individually; file parts are buffered whole
// (the caller bounds the request body with http.MaxBytesReader).
const maxFieldBytes = 1 << 20

// ValidationError is a client-correctable problem with the submitted form.
// Its message is safe to return in the response body.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// File is a buffered file part with its client-declared metadata.
type File struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Form is the result of a completed multipart parse: named text fields and
// named file parts. Parsing has no side effects on external stores.
type Form struct {
	Fields map[string]string
	Files  map[string]File
}

// Has reports whether a text field was present in the request.
func (f *Form) Has(name string) bool {
	_, ok := f.Fields[name]
	return ok
}

// Value returns a text field, defaulting to the empty string.
func (f *Form) Value(name string) string {
	return f.Fields[name]
}

// Int returns a numeric field, defaulting to 0 when absent or non-numeric.
func (f *Form) Int(name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(f.Fields[name]))
	if err != nil {
		return 0
	}
	return n
}

// Bool returns true only for the exact literal "true".
func (f *Form) Bool(name string) bool {
	return f.Fields[name] == "true"
}

// Options control the per-handler parse constraints.
type Options struct {
	// RequiredFields are text field names that must be present and non-empty.
	RequiredFields []string
}

// ReadForm streams a multipart/form-data body into a Form.
//
// The content type is checked before the body is touched. File parts named
// resume and profilePhoto are validated against their fixed type rules; a
// violation sets a single sticky error (first violation wins), the offending
// part is drained and discarded, and parsing continues so the stream is fully
// consumed. The sticky error, then missing required fields, are reported once
// parsing completes.
func ReadForm(r *http.Request, opts Options) (*Form, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/form-data") {
		return nil, NewValidationError("Content-Type must be multipart/form-data")
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || strings.TrimSpace(params["boundary"]) == "" {
		return nil, NewValidationError("Content-Type must be multipart/form-data")
	}

	form := &Form{
		Fields: make(map[string]string),
		Files:  make(map[string]File),
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	stickyErr := ""
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart stream: %w", err)
		}
		name := part.FormName()
		if name == "" {
			drain(part)
			continue
		}
		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			part.Close()
			if err != nil {
				return nil, fmt.Errorf("read field %q: %w", name, err)
			}
			form.Fields[name] = string(value)
			continue
		}

		filename := safeFilename(part.FileName())
		declared := part.Header.Get("Content-Type")
		if msg := validateFilePart(name, filename, declared); msg != "" {
			if stickyErr == "" {
				stickyErr = msg
			}
			drain(part)
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer file %q: %w", name, err)
		}
		form.Files[name] = File{
			Data:        data,
			Filename:    filename,
			ContentType: declared,
		}
	}

	if stickyErr != "" {
		return nil, NewValidationError(stickyErr)
	}
	if missing := missingFields(form, opts.RequiredFields); len(missing) > 0 {
		return nil, NewValidationError(
			"Missing required fields: " + joinAnd(opts.RequiredFields) + " are required")
	}
	return form, nil
}

var pdfContentTypes = map[string]struct{}{
	"application/pdf":      {},
	"application/x-pdf":    {},
	"application/acrobat":  {},
	"applications/vnd.pdf": {},
	"text/pdf":             {},
	"text/x-pdf":           {},
}

var imageContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// validateFilePart applies the fixed per-field type rules. It returns the
// user-facing error message, or "" when the part is acceptable.
func validateFilePart(field, filename, contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext := strings.ToLower(filepath.Ext(filename))
	switch field {
	case "resume":
		if ext == ".pdf" {
			return ""
		}
		if _, ok := pdfContentTypes[contentType]; ok {
			return ""
		}
		return "Resume must be a PDF file."
	case "profilePhoto":
		if _, ok := imageContentTypes[contentType]; ok {
			return ""
		}
		if _, ok := imageExtensions[ext]; ok {
			return ""
		}
		return "Profile photo must be a JPG or PNG image."
	}
	return ""
}

func missingFields(form *Form, required []string) []string {
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(form.Fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func joinAnd(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}

func safeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "unknown_file"
	}
	return name
}

func drain(part *multipart.Part) {
	_, _ = io.Copy(io.Discard, part)
	part.Close()
}
