package domain

import (
	"fmt"
	"strings"
)

// Format is the closed set of upload formats the extractors understand.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPG
	FormatJPEG
	FormatPNG
	FormatPDF
	FormatDOCX
	FormatXLSX
	FormatXLS
	FormatTXT
)

var formatExtensions = map[Format]string{
	FormatJPG:  "jpg",
	FormatJPEG: "jpeg",
	FormatPNG:  "png",
	FormatPDF:  "pdf",
	FormatDOCX: "docx",
	FormatXLSX: "xlsx",
	FormatXLS:  "xls",
	FormatTXT:  "txt",
}

// SupportedFormats lists every dispatchable format in declaration order.
func SupportedFormats() []Format {
	return []Format{FormatJPG, FormatJPEG, FormatPNG, FormatPDF, FormatDOCX, FormatXLSX, FormatXLS, FormatTXT}
}

func (f Format) String() string {
	if ext, ok := formatExtensions[f]; ok {
		return ext
	}
	return "unknown"
}

// ParseFormat maps an extension token (with or without a leading dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	token := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	for _, f := range SupportedFormats() {
		if formatExtensions[f] == token {
			return f, nil
		}
	}
	return FormatUnknown, WrapError(ErrUnsupportedFormat, "parse format", fmt.Errorf("extension %q", token))
}

// ExtensionFromFilename returns the lower-cased text after the last dot.
// A name without a dot is returned lower-cased as a whole.
func ExtensionFromFilename(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return strings.ToLower(filename)
	}
	return strings.ToLower(filename[idx+1:])
}

type SpreadsheetKind int

const (
	SpreadsheetXLSX SpreadsheetKind = iota
	SpreadsheetXLS
)

func (k SpreadsheetKind) String() string {
	if k == SpreadsheetXLS {
		return "xls"
	}
	return "xlsx"
}
