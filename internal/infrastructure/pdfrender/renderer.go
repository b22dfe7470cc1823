package pdfrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const defaultDPI = 200

var errEmptyPayload = domain.WrapError(domain.ErrExtraction, "open pdf", errors.New("empty pdf payload"))

type Options struct {
	BinaryPath string
	DPI        int
	TempDir    string
}

// Renderer rasterises PDF pages with Poppler's pdftoppm.
type Renderer struct {
	binary  string
	dpi     int
	tempDir string
}

func New(options Options) *Renderer {
	binary := strings.TrimSpace(options.BinaryPath)
	if binary == "" {
		binary = "pdftoppm"
	}
	dpi := options.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Renderer{
		binary:  binary,
		dpi:     dpi,
		tempDir: options.TempDir,
	}
}

func (r *Renderer) Render(ctx context.Context, data []byte) ([]image.Image, error) {
	if len(data) == 0 {
		return nil, errEmptyPayload
	}
	// pdftoppm opens encrypted and damaged files the parser rejects, so a
	// parse failure only drops the page-count check.
	pages, countErr := CountPages(data)

	workDir, err := os.MkdirTemp(r.tempDir, "pdfrender-*")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	source := filepath.Join(workDir, "source.pdf")
	if err := os.WriteFile(source, data, 0o600); err != nil {
		return nil, fmt.Errorf("write pdf source: %w", err)
	}

	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, r.binary, "-png", "-r", strconv.Itoa(r.dpi), source, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "render pdf pages",
			errors.Join(fmt.Errorf("%s: %w: %s", r.binary, err, strings.TrimSpace(stderr.String())), countErr))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	switch {
	case len(files) == 0:
		return nil, domain.WrapError(domain.ErrExtraction, "render pdf pages",
			errors.Join(errors.New("no pages rendered"), countErr))
	case countErr == nil && len(files) != pages:
		return nil, domain.WrapError(domain.ErrExtraction, "render pdf pages",
			fmt.Errorf("rendered %d of %d pages", len(files), pages))
	}
	SortPageFiles(files)

	images := make([]image.Image, 0, len(files))
	for _, name := range files {
		img, err := decodeFile(name)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// CountPages parses the document structure and returns its page count.
func CountPages(data []byte) (pages int, err error) {
	if len(data) == 0 {
		return 0, errEmptyPayload
	}
	// The parser panics on some truncated cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = domain.WrapError(domain.ErrExtraction, "open pdf", fmt.Errorf("malformed pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, domain.WrapError(domain.ErrExtraction, "open pdf", err)
	}
	pages = reader.NumPage()
	if pages <= 0 {
		return 0, domain.WrapError(domain.ErrExtraction, "open pdf", fmt.Errorf("pdf has no pages"))
	}
	return pages, nil
}

var pageNumberPattern = regexp.MustCompile(`-(\d+)\.png$`)

// SortPageFiles orders pdftoppm outputs by the page number in their name.
// pdftoppm zero-pads to the width of the page count, but sorting numerically
// keeps mixed widths correct too.
func SortPageFiles(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})
}

func pageNumber(path string) int {
	m := pageNumberPattern.FindStringSubmatch(filepath.Base(path))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rendered page: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "decode rendered page", err)
	}
	return img, nil
}
