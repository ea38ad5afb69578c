package payment

import (
	"encoding/base64"

	"github.com/ivv-intern/storefront/internal/apperror"
	qrcode "github.com/skip2/go-qrcode"
)

const defaultImageSize = 256

// Code is a rendered payment code together with the payload it encodes.
type Code struct {
	Payload string
	PNG     []byte
}

// DataURI returns the PNG as a data URI that browsers display directly.
func (c Code) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)
}

// Renderer turns transfers into QR images. The error correction level is
// fixed when the renderer is created.
type Renderer struct {
	level qrcode.RecoveryLevel
	size  int
}

// NewRenderer creates a renderer producing size×size images with medium error
// correction.
func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = defaultImageSize
	}
	return &Renderer{
		level: qrcode.Medium,
		size:  size,
	}
}

// Render validates t and encodes its payload. Validation errors are
// InvalidArgument and are reported before any image is generated.
func (r *Renderer) Render(t Transfer) (Code, error) {
	payload, err := t.Payload()
	if err != nil {
		return Code{}, err
	}

	png, err := qrcode.Encode(payload, r.level, r.size)
	if err != nil {
		return Code{}, apperror.Internal(err, "failed to render payment code")
	}

	return Code{Payload: payload, PNG: png}, nil
}
