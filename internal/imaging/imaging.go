// Package imaging normalizes inbound image bytes before they are sent to the
// vision model: decode, downscale, and re-encode as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension is the maximum width or height of a normalized image.
// Book covers photographed on a phone are much larger than the model needs;
// capping the size keeps upload payloads small.
const MaxDimension = 1024

// jpegQuality for re-encoded images.
const jpegQuality = 85

// Normalize decodes image data (JPEG, PNG, or WebP), downscales it so that
// the longest side is at most MaxDimension, and re-encodes it as JPEG.
// Returns the normalized bytes and the output MIME type.
// Undecodable data is an error; the caller treats it as an analysis failure.
func Normalize(data []byte) ([]byte, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, "", fmt.Errorf("decode image: empty %dx%d image", width, height)
	}

	outW, outH := scaled(width, height, MaxDimension)
	out := src
	if outW != width || outH != height {
		dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}

	log.Debug().
		Str("format", format).
		Int("inputBytes", len(data)).
		Int("outputBytes", buf.Len()).
		Str("size", fmt.Sprintf("%dx%d", outW, outH)).
		Msg("Image normalized")

	return buf.Bytes(), "image/jpeg", nil
}

// scaled returns the output dimensions with the longest side capped at max,
// preserving aspect ratio. Images already within bounds keep their size.
func scaled(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width >= height {
		return max, height * max / width
	}
	return width * max / height, max
}
