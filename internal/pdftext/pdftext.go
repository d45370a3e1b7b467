// Package pdftext extracts plain text from résumé PDFs. Extraction is best
// effort: a primary parser is tried first and a content-stream scan is used
// when it fails or finds nothing.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/hirecall/internal/model"
)

// Extractor turns PDF bytes into normalized text.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the document text. It returns model.ErrUnreadablePDF when
// neither parser yields any text.
func (e *Extractor) Extract(data []byte) (string, error) {
	text, err := primary(data)
	if err != nil {
		e.logger.Warn("primary pdf parser failed, trying fallback", "error", err)
	}
	if text = Normalize(text); text != "" {
		return text, nil
	}

	text, err = fallback(data)
	if err != nil {
		e.logger.Warn("fallback pdf parser failed", "error", err)
	}
	if text = Normalize(text); text != "" {
		return text, nil
	}
	return "", model.ErrUnreadablePDF
}

func primary(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return string(b), nil
}

func fallback(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panicked: %v", r)
		}
	}()

	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var b strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		content, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return b.String(), fmt.Errorf("extracting page %d: %w", page, err)
		}
		if content == nil {
			continue
		}
		raw, err := io.ReadAll(content)
		if err != nil {
			return b.String(), fmt.Errorf("reading page %d: %w", page, err)
		}
		b.WriteString(TextFromContentStream(raw))
		b.WriteString("\n")
	}
	return b.String(), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Normalize applies NFKC, folds runs of horizontal whitespace to one space
// and collapses more than one blank line.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	s = horizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
