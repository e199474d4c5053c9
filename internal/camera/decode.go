package camera

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var (
	ErrBadImage = errors.New("bad_image")
	ErrNoQRCode = errors.New("no_qr_code")
)

// DecodeQR extracts the text payload of the first QR code found in a JPEG or
// PNG frame.
func DecodeQR(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", ErrBadImage
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", ErrBadImage
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", ErrBadImage
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNoQRCode
	}

	return result.GetText(), nil
}
