package port

import "context"

// ParseInput carries the rendered receipt pages into a parser.
type ParseInput struct {
	// Pages holds one PNG image per rendered PDF page, in page order.
	Pages [][]byte
	// Filename is informational only; it never influences extraction.
	Filename string
}

// ParseOutput is the result of a model extraction call.
type ParseOutput struct {
	// Document is the model's JSON object, kept loosely typed. The shape is
	// defined by prompt instructions, not by a schema the service enforces.
	Document map[string]interface{}
	// ModelUsed is the model identifier the call was made with.
	ModelUsed string
	// PromptUsed is the extraction prompt sent alongside the images.
	PromptUsed string
}

// ReceiptParser extracts structured receipt data from rendered page images.
type ReceiptParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
