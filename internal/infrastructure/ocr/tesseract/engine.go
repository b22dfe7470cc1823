package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type Engine struct {
	languages []string
	psm       gosseract.PageSegMode
}

func New(language string) *Engine {
	langs := strings.Split(strings.TrimSpace(language), "+")
	if len(langs) == 0 || langs[0] == "" {
		langs = []string{"eng"}
	}
	return &Engine{
		languages: langs,
		psm:       gosseract.PSM_AUTO,
	}
}

// Recognize runs Tesseract on img and returns its output untouched,
// trailing newline included.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr encode image", err)
	}

	// gosseract clients are not safe for concurrent use.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set ocr language %v: %w", e.languages, err)
	}
	if err := client.SetPageSegMode(e.psm); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr load image", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "ocr recognize", err)
	}
	return text, nil
}
