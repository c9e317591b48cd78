package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
)

const (
	maxTextLength = 1 << 20
	maxNameLength = 255
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// validateExtract rejects requests no extractor should see. Bad sizes,
// ranges, modes and sources are left to the core, which reports them as
// diagnostics.
func validateExtract(req *ExtractRequest, allowFiles bool, errs map[string]string) {
	if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if req.source() == bow.SourceFile && !allowFiles {
		errs["source"] = "file source is disabled on this server"
	}
}

func ValidateExtractRequest(req *ExtractRequest, allowFiles bool) error {
	errs := make(map[string]string)
	validateExtract(req, allowFiles, errs)
	return fieldErrors(errs)
}

func ValidateAddDocumentRequest(req *AddDocumentRequest, allowFiles bool) error {
	errs := make(map[string]string)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs["name"] = "name is required"
	} else if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	validateExtract(&req.ExtractRequest, allowFiles, errs)
	return fieldErrors(errs)
}

func fieldErrors(errs map[string]string) error {
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
