package extractor

import (
	"fmt"
	"unicode/utf8"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// ExtractPlainText returns data unchanged when it is valid UTF-8.
func ExtractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrExtraction, "decode text", fmt.Errorf("invalid utf-8 byte sequence"))
	}
	return string(data), nil
}
