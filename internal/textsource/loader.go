// Package textsource loads text files for the extractors. Line breaks are
// flattened to single spaces so the loaded text is one line.
package textsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
)

const DefaultMaxBytes = 10 << 20

// newlines maps CRLF, CR and LF each to one space.
var newlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

type Loader struct {
	maxBytes int64
	logger   *slog.Logger
}

func New(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		maxBytes: maxBytes,
		logger:   slog.Default().With("component", "text-loader"),
	}
}

// Load returns the contents of the named file with line breaks replaced by
// spaces. On failure it returns "" and an IOFailure diagnostic.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.IOFailuref("could not read file %s: %v", name, err)
	}
	f, err := os.Open(name)
	if err != nil {
		l.logger.Warn("could not read file", "file", name, "error", err)
		return "", apperrors.IOFailuref("could not read file %s: %v", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		l.logger.Warn("could not read file", "file", name, "error", err)
		return "", apperrors.IOFailuref("could not read file %s: %v", name, err)
	}
	if int64(len(data)) > l.maxBytes {
		return "", apperrors.IOFailuref("file %s exceeds %d bytes", name, l.maxBytes)
	}
	return newlines.Replace(string(data)), nil
}

// ListDir returns the regular files in dir whose extension is one of exts
// (all files when exts is empty), sorted by name.
func ListDir(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if len(exts) > 0 && !hasExt(entry.Name(), exts) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
