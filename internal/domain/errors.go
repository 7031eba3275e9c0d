package domain

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidEncoding      = errors.New("invalid base64 file content")
	ErrMalformedPDF         = errors.New("malformed PDF document")
	ErrNoRenderablePages    = errors.New("no renderable pages")
	ErrUpstreamFailure      = errors.New("model service request failed")
	ErrMalformedModelOutput = errors.New("model returned unparseable output")
)
