package extractor

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const defaultPDFWorkers = 4

type Options struct {
	// PDFWorkers bounds concurrent OCR of PDF pages.
	PDFWorkers int
}

// Dispatcher routes raw bytes to the extractor for their format.
type Dispatcher struct {
	ocr        ports.OCREngine
	renderer   ports.PageRenderer
	pdfWorkers int
}

func NewDispatcher(ocr ports.OCREngine, renderer ports.PageRenderer, options Options) *Dispatcher {
	workers := options.PDFWorkers
	if workers <= 0 {
		workers = defaultPDFWorkers
	}
	return &Dispatcher{
		ocr:        ocr,
		renderer:   renderer,
		pdfWorkers: workers,
	}
}

func (d *Dispatcher) Extract(ctx context.Context, data []byte, format domain.Format) (string, error) {
	switch format {
	case domain.FormatJPG, domain.FormatJPEG, domain.FormatPNG:
		return d.ExtractImage(ctx, data)
	case domain.FormatPDF:
		return d.ExtractPDF(ctx, data)
	case domain.FormatDOCX:
		return ExtractDOCX(data)
	case domain.FormatXLSX:
		return ExtractSpreadsheet(data, domain.SpreadsheetXLSX)
	case domain.FormatXLS:
		return ExtractSpreadsheet(data, domain.SpreadsheetXLS)
	case domain.FormatTXT:
		return ExtractPlainText(data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text", fmt.Errorf("format %s", format))
	}
}
