// Package jpeg wraps stdlib image/jpeg, the library-backed format spec
// §4.6.6 calls for ("wrappers over third-party compression libraries ...
// treated as a black box; only how the core drives them and shapes their
// output matters"). No pure-Go JPEG codec other than stdlib's appears
// anywhere in the corpus, and stdlib's is the one every pack repo that
// touches JPEG itself builds on.
package jpeg

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

// Info describes the JPEG codec: single still frame, lossy DCT, no alpha.
func Info() *codec.Info {
	return &codec.Info{
		Name:        "JPEG",
		Description: "Joint Photographic Experts Group",
		MIMETypes:   []string{"image/jpeg"},
		Extensions:  []string{"jpg", "jpeg", "jpe", "jif", "jfif"},
		Signatures: []codec.Signature{
			{Pattern: []byte{0xFF, 0xD8, 0xFF}},
		},
		Load: codec.LoadFeatures{
			MetaData:    true,
			ICCProfile:  true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats:         []pixelformat.Format{pixelformat.BPP24RGB, pixelformat.BPP8Gray},
			Compressions:         []codec.Compression{"JPEG"},
			DefaultCompression:   "JPEG",
			CompressionLevelMin:  0,
			CompressionLevelMax:  100,
			CompressionLevelDflt: 15, // quality = max - level = 85, spec's documented default
		},
	}
}

// Codec implements codec.Codec for single-frame JPEG.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
