package port

import "context"

// PageRenderer rasterizes PDF bytes into an ordered sequence of page images,
// up to the lesser of the document's page count and maxPages.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error)
}
