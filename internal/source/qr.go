package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pfrederiksen/activity-intake/internal/logger"
)

// decodeQR returns the QR payloads found in the image read from r. Images
// that cannot be decoded or carry no code yield nil.
func (e *Extractor) decodeQR(name string, r io.Reader) []string {
	img, _, err := image.Decode(r)
	if err != nil {
		e.log.Warn("qr decode skipped", logger.Fields{"image": name, "error": err.Error()})
		return nil
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		e.log.Warn("qr decode skipped", logger.Fields{"image": name, "error": err.Error()})
		return nil
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		e.log.Debug("no qr code found", logger.Fields{"image": name})
		return nil
	}

	text := strings.TrimSpace(result.GetText())
	if text == "" {
		return nil
	}
	logger.IncrCounter("source.qr_decoded")
	return []string{text}
}
