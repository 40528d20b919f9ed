package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

func (e *Extractor) extractFile(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Kind: KindFile, Source: path, Op: "stat", Err: err}
	}
	if info.Size() > e.cfg.MaxFileSize {
		return nil, &Error{Kind: KindFile, Source: path, Op: "read", Err: fmt.Errorf("%w: %s (limit %s)",
			ErrTooLarge, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(e.cfg.MaxFileSize)))}
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".txt" || ext == ".md":
		return e.extractTextFile(path, info.Size())
	case ext == ".pdf":
		return e.extractPDF(path, info.Size())
	case imageExts[ext]:
		return e.extractImage(ctx, path, info.Size())
	default:
		return nil, &Error{Kind: KindFile, Source: path, Op: "read", Err: fmt.Errorf("%w: %s", ErrUnsupported, ext)}
	}
}

func (e *Extractor) extractTextFile(path string, size int64) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindFile, Source: path, Op: "read", Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &Error{Kind: KindFile, Source: path, Op: "read", Err: fmt.Errorf("file is not valid UTF-8")}
	}
	return &Result{
		Kind:       KindFile,
		SourceFile: path,
		Text:       string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))),
		Metadata:   Metadata{ContentType: "text/plain", Size: size},
	}, nil
}

func (e *Extractor) extractPDF(path string, size int64) (res *Result, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindPDF, Source: path, Op: "read", Err: err}
	}

	// The PDF reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &Error{Kind: KindPDF, Source: path, Op: "parse", Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	text, pages, err := pdfText(data, DefaultMaxPDFPages)
	if err != nil {
		return nil, &Error{Kind: KindPDF, Source: path, Op: "parse", Err: err}
	}
	return &Result{
		Kind:       KindPDF,
		SourceFile: path,
		Text:       text,
		Metadata:   Metadata{ContentType: "application/pdf", Size: size, Pages: pages},
	}, nil
}

// pdfText returns the plain text of the first maxPages pages and the total
// page count
func pdfText(data []byte, maxPages int) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("opening PDF: %w", err)
	}

	numPages := reader.NumPage()
	limit := numPages
	if maxPages > 0 && limit > maxPages {
		limit = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= limit; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), numPages, nil
}
