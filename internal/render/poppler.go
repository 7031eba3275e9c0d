package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lipseyocr/internal/config"
	"lipseyocr/internal/domain"
)

// Renderer rasterizes PDF pages to PNG images using the poppler command-line
// tools (pdfinfo for the page count, pdftoppm for rendering).
type Renderer struct {
	dpi      int
	pdftoppm string
	pdfinfo  string
	runner   Runner
}

// NewRenderer creates a poppler-backed renderer from a render config.
func NewRenderer(cfg *config.RenderConfig) *Renderer {
	return NewRendererWithRunner(cfg, execRunner{})
}

// NewRendererWithRunner creates a renderer with a custom command runner (for testing).
func NewRendererWithRunner(cfg *config.RenderConfig, runner Runner) *Renderer {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 220
	}
	pdftoppm := cfg.Pdftoppm
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	pdfinfo := cfg.Pdfinfo
	if pdfinfo == "" {
		pdfinfo = "pdfinfo"
	}
	return &Renderer{dpi: dpi, pdftoppm: pdftoppm, pdfinfo: pdfinfo, runner: runner}
}

// RenderPages writes the PDF to a temp file and renders up to maxPages pages
// at the configured DPI. A document that cannot be read at all yields
// domain.ErrMalformedPDF; a readable document with nothing to render yields
// domain.ErrNoRenderablePages.
func (r *Renderer) RenderPages(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "lipseyocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp PDF: %w", err)
	}

	pages, err := r.countPages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, domain.ErrNoRenderablePages
	}
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-f", "1",
		"-l", strconv.Itoa(pages),
		pdfPath,
		prefix,
	}
	if _, errb, err := r.runner.Run(ctx, r.pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm: %v (%s)", domain.ErrMalformedPDF, err, truncate(string(errb), 512))
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("collecting rendered pages: %w", err)
	}
	if len(matches) == 0 {
		return nil, domain.ErrNoRenderablePages
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageIndexFromName(matches[i]) < pageIndexFromName(matches[j])
	})

	images := make([][]byte, 0, len(matches))
	for _, path := range matches {
		img, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rendered page %s: %w", filepath.Base(path), err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *Renderer) countPages(ctx context.Context, pdfPath string) (int, error) {
	out, errb, err := r.runner.Run(ctx, r.pdfinfo, pdfPath)
	if err != nil {
		return 0, fmt.Errorf("%w: pdfinfo: %v (%s)", domain.ErrMalformedPDF, err, truncate(string(errb), 512))
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Pages:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				if total, convErr := strconv.Atoi(parts[1]); convErr == nil {
					return total, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: pdfinfo reported no page count", domain.ErrMalformedPDF)
}

// pdftoppm names output files page-1.png, page-01.png, etc. depending on the
// total page count, so sort on the numeric suffix rather than the string.
func pageIndexFromName(path string) int {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, "-")
	if idx >= 0 {
		number := strings.TrimSuffix(base[idx+1:], ".png")
		if v, err := strconv.Atoi(number); err == nil {
			return v
		}
	}
	return 0
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
