package extractor

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// ExtractPDF rasterises every page, OCRs the pages concurrently and joins
// their text with a single newline in page order.
func (d *Dispatcher) ExtractPDF(ctx context.Context, data []byte) (string, error) {
	pages, err := d.renderer.Render(ctx, data)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "render pdf", err)
	}

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.pdfWorkers)
	for i, page := range pages {
		g.Go(func() error {
			text, err := d.recognize(gctx, page)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, "\n"), nil
}
