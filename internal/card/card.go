// Package card renders membership cards as QR images and extracts tokens back
// out of scanned QR content.
package card

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered QR image size in pixels, large enough for
// reliable phone-camera scans of a printed card.
const DefaultSize = 512

// VerificationURL builds the URL a card's QR code carries. The token rides in
// the fragment so it never reaches the verification server's logs.
func VerificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s#token=%s", baseURL, token)
}

// RenderPNG encodes the verification URL for token into a QR PNG.
func RenderPNG(baseURL, token string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(VerificationURL(baseURL, token), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render card QR: %w", err)
	}
	return png, nil
}
