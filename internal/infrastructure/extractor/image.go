package extractor

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/ocr"
)

// ExtractImage decodes a jpg/png upload, binarises it and runs OCR.
// The engine output is returned verbatim.
func (d *Dispatcher) ExtractImage(ctx context.Context, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "decode image", err)
	}
	return d.recognize(ctx, img)
}

func (d *Dispatcher) recognize(ctx context.Context, img image.Image) (string, error) {
	text, err := d.ocr.Recognize(ctx, ocr.Preprocess(img))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "recognize text", err)
	}
	return text, nil
}
