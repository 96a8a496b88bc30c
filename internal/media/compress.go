package media

import (
	"bytes"
	"image"
	"image/jpeg"
)

// qualityLadder is walked top to bottom until the encoded image fits the
// target ceiling.
var qualityLadder = []int{85, 70, 55, 40, 25}

// CompressImage re-encodes a JPEG stepping down the quality ladder until the
// result fits target bytes. Returns the original bytes when the input is not
// decodable or already small enough; the last ladder step is returned even if
// it still exceeds the target.
func CompressImage(data []byte, target int64) []byte {
	if int64(len(data)) <= target {
		return data
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	best := data
	for _, q := range qualityLadder {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return best
		}
		if int64(buf.Len()) < int64(len(best)) {
			best = buf.Bytes()
		}
		if int64(buf.Len()) <= target {
			break
		}
	}
	return best
}

// IsCompressible reports whether the extension is one we recompress.
func IsCompressible(ext string) bool {
	return ext == "jpg" || ext == "jpeg"
}
