package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/textsource"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
)

// Builder turns a directory of text files into reference documents. Files
// are loaded and extracted in parallel; the result keeps file-name order.
type Builder struct {
	extractor *bow.Extractor
	workers   int
	logger    *slog.Logger
}

func NewBuilder(extractor *bow.Extractor, workers int) *Builder {
	if workers <= 0 {
		workers = 1
	}
	return &Builder{
		extractor: extractor,
		workers:   workers,
		logger:    slog.Default().With("component", "corpus-builder"),
	}
}

// BuildFromDir extracts a document from every matching file in dir. Files
// that produce a diagnostic (unreadable, empty) are logged and skipped; a
// cancelled ctx aborts the build.
func (b *Builder) BuildFromDir(ctx context.Context, dir string, params bow.Params, exts ...string) ([]Document, error) {
	files, err := textsource.ListDir(dir, exts...)
	if err != nil {
		return nil, err
	}
	return b.BuildFromFiles(ctx, files, params)
}

// BuildFromFiles is BuildFromDir over an explicit file list.
func (b *Builder) BuildFromFiles(ctx context.Context, files []string, params bow.Params) ([]Document, error) {
	slots := make([]*Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bag, err := b.extractor.FromSource(gctx, bow.SourceFile, file, params)
			if err != nil {
				logger.Diagnostic(b.logger, "skipping reference file", err, "file", file)
				return nil
			}
			doc := NewDocument(filepath.Base(file), params, bag)
			slots[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	docs := make([]Document, 0, len(files))
	for _, doc := range slots {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	b.logger.Info("corpus built", "files", len(files), "documents", len(docs), "workers", b.workers)
	return docs, nil
}
