// Package imaging normalizes uploaded and generated pictures into the JPEG
// format the rest of the pipeline stores and prints.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// JPEGQuality balances visual quality against stored size; generated PNGs
// shrink roughly by half at this setting.
const JPEGQuality = 85

// ThumbnailMaxSide bounds the longest side of upload preview thumbnails.
const ThumbnailMaxSide = 200

// Normalize re-encodes any registered image format as JPEG at the standard
// quality. The generation provider's native PNG output is heavier than what
// print fulfillment needs.
func Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encodeJPEG(img)
}

// Thumbnail scales an image down so its longest side is at most
// ThumbnailMaxSide and returns it JPEG-encoded. Images already within the
// bound are re-encoded without scaling.
func Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest > ThumbnailMaxSide {
		scale := float64(ThumbnailMaxSide) / float64(longest)
		img = resize(img, int(float64(w)*scale), int(float64(h)*scale))
	}
	return encodeJPEG(img)
}

// resize performs a nearest-neighbour scale. Thumbnails are small previews;
// interpolation quality does not matter here.
func resize(src image.Image, width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	srcBounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := srcBounds.Min.Y + y*srcBounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := srcBounds.Min.X + x*srcBounds.Dx()/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
