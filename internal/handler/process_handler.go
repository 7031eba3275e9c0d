package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lipseyocr/internal/coverage"
	"lipseyocr/internal/domain"
	"lipseyocr/internal/port"
)

// ProcessRequest is the inbound payload. MaxPages is deliberately loose:
// callers have sent strings, floats, and nothing at all, and every one of
// those coerces to the default before clamping.
type ProcessRequest struct {
	FileBase64 string      `json:"fileBase64" binding:"required"`
	Filename   string      `json:"filename"`
	MaxPages   interface{} `json:"max_pages"`
}

// ProcessHandler runs the extraction pipeline: decode, render, parse, annotate.
type ProcessHandler struct {
	renderer     port.PageRenderer
	parser       port.ReceiptParser
	maxPages     int
	defaultPages int
	threshold    float64
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(renderer port.PageRenderer, parser port.ReceiptParser, maxPages, defaultPages int, threshold float64) *ProcessHandler {
	if maxPages <= 0 {
		maxPages = 4
	}
	if defaultPages <= 0 || defaultPages > maxPages {
		defaultPages = maxPages
	}
	return &ProcessHandler{
		renderer:     renderer,
		parser:       parser,
		maxPages:     maxPages,
		defaultPages: defaultPages,
		threshold:    threshold,
	}
}

// Process handles POST /process.
//
// The pipeline is strictly linear: authenticate (middleware), clamp, decode,
// render, parse, annotate, respond. Any step's failure short-circuits to an
// error response; nothing is retried or persisted.
func (h *ProcessHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fileBase64 is required")
		return
	}
	if req.Filename == "" {
		req.Filename = "receipt.pdf"
	}
	pages := clampPageCount(req.MaxPages, h.defaultPages, h.maxPages)

	pdf, err := base64.StdEncoding.DecodeString(req.FileBase64)
	if err != nil {
		HandleError(c, fmt.Errorf("%w: %v", domain.ErrInvalidEncoding, err))
		return
	}

	images, err := h.renderer.RenderPages(c.Request.Context(), pdf, pages)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.parser.Parse(c.Request.Context(), port.ParseInput{
		Pages:    images,
		Filename: req.Filename,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	// Diagnostic only. If the document shape surprises us the annotation is
	// dropped and the extraction still succeeds.
	if meta, ok := coverage.Annotate(out.Document, h.threshold); ok {
		out.Document["_coverage"] = meta
	}

	c.JSON(http.StatusOK, out.Document)
}

// clampPageCount coerces a caller-supplied page count to an int, falling back
// to def when it is missing, non-numeric, or non-positive, then clamps it to
// max. The clamp bounds rendering cost and the number of images sent
// upstream; caller intent never raises it.
func clampPageCount(v interface{}, def, max int) int {
	n := def
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		if parsed, err := strconv.Atoi(t); err == nil {
			n = parsed
		}
	}
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
