package render_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lipseyocr/internal/config"
	"lipseyocr/internal/domain"
	"lipseyocr/internal/render"
)

// stubRunner fakes pdfinfo and pdftoppm. On render it writes one PNG file per
// requested page under the prefix pdftoppm was given, the way poppler does.
type stubRunner struct {
	docPages    int
	pdfinfoErr  error
	pdftoppmErr error

	pdftoppmArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	switch name {
	case "pdfinfo":
		if s.pdfinfoErr != nil {
			return nil, []byte("Syntax Error: Couldn't read xref table"), s.pdfinfoErr
		}
		out := fmt.Sprintf("Title:          receipt\nPages:          %d\nEncrypted:      no\n", s.docPages)
		return []byte(out), nil, nil
	case "pdftoppm":
		s.pdftoppmArgs = args
		if s.pdftoppmErr != nil {
			return nil, []byte("Syntax Error"), s.pdftoppmErr
		}
		last, _ := strconv.Atoi(args[6]) // value of -l
		prefix := args[len(args)-1]
		for page := 1; page <= last; page++ {
			path := fmt.Sprintf("%s-%d.png", prefix, page)
			if err := os.WriteFile(path, []byte(fmt.Sprintf("png-%d", page)), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected command %q", name)
	}
}

func newTestRenderer(runner render.Runner) *render.Renderer {
	cfg := &config.RenderConfig{DPI: 220, Pdftoppm: "pdftoppm", Pdfinfo: "pdfinfo"}
	return render.NewRendererWithRunner(cfg, runner)
}

func TestRenderPages_OrderedOutput(t *testing.T) {
	runner := &stubRunner{docPages: 3}
	images, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		assert.Equal(t, fmt.Sprintf("png-%d", i+1), string(img))
	}
}

func TestRenderPages_ClampsToDocumentPageCount(t *testing.T) {
	runner := &stubRunner{docPages: 2}
	images, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestRenderPages_ClampsToMaxPages(t *testing.T) {
	runner := &stubRunner{docPages: 10}
	images, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	require.NoError(t, err)
	assert.Len(t, images, 4)
	// pdftoppm was told to stop at page 4.
	assert.Equal(t, []string{"-png", "-r", "220", "-f", "1", "-l", "4"}, runner.pdftoppmArgs[:7])
}

func TestRenderPages_ZeroPageDocument(t *testing.T) {
	runner := &stubRunner{docPages: 0}
	_, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoRenderablePages)
	assert.NotErrorIs(t, err, domain.ErrMalformedPDF)
}

func TestRenderPages_MalformedPDFIsDistinctFromEmpty(t *testing.T) {
	runner := &stubRunner{pdfinfoErr: errors.New("exit status 1")}
	_, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("not a pdf"), 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPDF)
	assert.NotErrorIs(t, err, domain.ErrNoRenderablePages)
}

func TestRenderPages_RenderFailureIsMalformedPDF(t *testing.T) {
	runner := &stubRunner{docPages: 2, pdftoppmErr: errors.New("exit status 1")}
	_, err := newTestRenderer(runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	assert.ErrorIs(t, err, domain.ErrMalformedPDF)
}

func TestRenderPages_UsesConfiguredDPI(t *testing.T) {
	runner := &stubRunner{docPages: 1}
	cfg := &config.RenderConfig{DPI: 144, Pdftoppm: "pdftoppm", Pdfinfo: "pdfinfo"}
	_, err := render.NewRendererWithRunner(cfg, runner).RenderPages(context.Background(), []byte("%PDF-1.4"), 4)

	require.NoError(t, err)
	assert.Equal(t, "144", runner.pdftoppmArgs[2])
}
