package extractor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ExtractDOCX returns each body paragraph's text followed by a newline.
// Empty paragraphs contribute a bare newline; table cells are not body paragraphs.
func ExtractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open docx", err)
	}
	defer doc.Close()

	paragraphs, err := bodyParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "parse docx body", err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func bodyParagraphs(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := wordName(el.Name)
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			ancestors := stack
			stack = append(stack, name)

			switch {
			case name == "p" && parent == "body":
				inPara = true
				current.Reset()
			case !inPara:
			case within(ancestors, "pPr", "rPr"):
				// tab stops and break settings live here, not content
			case !within(ancestors, "r"):
			case name == "t":
				inText = true
			case name == "tab":
				current.WriteString("\t")
			case name == "br", name == "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced element %s", el.Name.Local)
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case name == "t":
				inText = false
			case name == "p" && inPara && len(stack) > 0 && stack[len(stack)-1] == "body":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(el)
			}
		}
	}
	return paragraphs, nil
}

func within(ancestors []string, names ...string) bool {
	for _, a := range ancestors {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

// wordName returns the local name for WordprocessingML elements and a
// namespaced name for everything else so foreign "p" or "t" are ignored.
func wordName(name xml.Name) string {
	if name.Space == wordprocessingNS || name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
