// Package poppler provides a PDF rasterizer backed by the poppler-utils
// command line tools (pdfinfo, pdftoppm).
package poppler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// Default configuration values.
const (
	// DefaultDPI balances legibility for embedding models against
	// per-page image size.
	DefaultDPI = 144
)

// CommandRunner executes an external command and returns its combined
// stdout. It exists so tests can run without poppler installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Config holds configuration for the poppler rasterizer.
type Config struct {
	// ImageDir is where rendered page images are written (required).
	ImageDir string

	// DPI is the render resolution (default: 144).
	DPI int

	// Runner overrides command execution, used in tests.
	Runner CommandRunner
}

// Rasterizer renders PDF pages to PNG images via pdftoppm.
type Rasterizer struct {
	imageDir string
	dpi      int
	runner   CommandRunner
}

// NewRasterizer creates a poppler rasterizer.
func NewRasterizer(cfg Config) (*Rasterizer, error) {
	if cfg.ImageDir == "" {
		return nil, fmt.Errorf("poppler: image directory is required")
	}
	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return nil, fmt.Errorf("poppler: creating image directory: %w", err)
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{}
	}
	return &Rasterizer{
		imageDir: cfg.ImageDir,
		dpi:      cfg.DPI,
		runner:   cfg.Runner,
	}, nil
}

// Rasterize renders every page of the PDF at path to a PNG under the
// image directory, returning pages in order. A page that fails to render
// is skipped with a warning; only a document whose page count cannot even
// be read is treated as unreadable.
func (r *Rasterizer) Rasterize(ctx context.Context, path, documentID, filename string) ([]domain.Page, error) {
	pageCount, err := r.pageCount(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
	}
	if pageCount == 0 {
		return nil, nil
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	pages := make([]domain.Page, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		imagePath := filepath.Join(r.imageDir,
			fmt.Sprintf("doc_%s_page_%d_%s.png", documentID, n, stem))

		if err := r.renderPage(ctx, path, imagePath, n); err != nil {
			logger.Warn("Skipping page %d of %s: %v", n, filename, err)
			continue
		}

		image, err := os.ReadFile(imagePath)
		if err != nil {
			logger.Warn("Skipping page %d of %s: reading render: %v", n, filename, err)
			continue
		}

		pages = append(pages, domain.Page{
			DocumentID: documentID,
			PageNumber: n,
			ImagePath:  imagePath,
			Image:      image,
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no page could be rendered", domain.ErrDocumentUnreadable)
	}
	return pages, nil
}

// pageCount reads the page count via pdfinfo.
func (r *Rasterizer) pageCount(ctx context.Context, path string) (int, error) {
	out, err := r.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parsing page count: %w", err)
		}
		return count, nil
	}
	return 0, fmt.Errorf("pdfinfo output missing page count")
}

// renderPage renders one page to imagePath. pdftoppm appends the .png
// extension itself, so the output prefix is the path without it.
func (r *Rasterizer) renderPage(ctx context.Context, path, imagePath string, page int) error {
	prefix := strings.TrimSuffix(imagePath, ".png")
	pageArg := strconv.Itoa(page)
	_, err := r.runner.Run(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-singlefile",
		"-f", pageArg,
		"-l", pageArg,
		path,
		prefix,
	)
	return err
}
