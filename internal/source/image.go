package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// OCR recognizes text in an image file
type OCR interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Tesseract runs the tesseract binary
type Tesseract struct {
	Command   string
	Languages string
}

// Recognize returns the text tesseract finds in the image at path
func (t Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout"}
	if t.Languages != "" {
		args = append(args, "-l", t.Languages)
	}
	out, err := exec.CommandContext(ctx, t.Command, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s: %s", t.Command, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("running %s: %w", t.Command, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Extractor) extractImage(ctx context.Context, path string, size int64) (*Result, error) {
	res := &Result{
		Kind:       KindImage,
		SourceFile: path,
		Images:     []string{path},
		Metadata:   Metadata{Size: size, Exif: readExif(path)},
	}

	if e.cfg.EnableQR {
		if f, err := os.Open(path); err == nil {
			res.QRCodes = e.decodeQR(path, f)
			f.Close()
		}
	}

	if e.ocr == nil {
		e.log.Debug("ocr disabled, image contributes no text", nil)
		return res, nil
	}

	text, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		return nil, &Error{Kind: KindImage, Source: path, Op: "ocr", Err: err}
	}
	res.Text = text
	return res, nil
}

// exifFields are the EXIF tags kept in the metadata
var exifFields = map[exif.FieldName]bool{
	exif.DateTimeOriginal: true,
	exif.DateTime:         true,
	exif.Make:             true,
	exif.Model:            true,
	exif.ImageDescription: true,
	exif.Artist:           true,
	exif.Software:         true,
}

type exifWalker struct {
	tags map[string]string
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || !exifFields[name] {
		return nil
	}
	v, err := tag.StringVal()
	if err != nil {
		v = tag.String()
	}
	if v = strings.TrimSpace(strings.Trim(v, "\x00")); v != "" {
		w.tags[string(name)] = v
	}
	return nil
}

// readExif returns selected EXIF tags of the image at path, or nil when the
// file carries none
func readExif(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	w := &exifWalker{tags: make(map[string]string)}
	_ = x.Walk(w)
	if lat, long, err := x.LatLong(); err == nil {
		w.tags["GPS"] = fmt.Sprintf("%.6f,%.6f", lat, long)
	}
	if len(w.tags) == 0 {
		return nil
	}
	return w.tags
}
