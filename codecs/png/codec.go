// Package png wraps stdlib image/png, the library-backed format spec
// §4.6.6 calls for. tEXt/zTXt/iTXt and iCCP chunks are recovered via a
// bounded hand-rolled chunk scan (chunks.go), since stdlib's decoder drops
// everything but pixels and palette.
package png

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

func Info() *codec.Info {
	return &codec.Info{
		Name:        "PNG",
		Description: "Portable Network Graphics",
		MIMETypes:   []string{"image/png"},
		Extensions:  []string{"png"},
		Signatures: []codec.Signature{
			{Pattern: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
		},
		Load: codec.LoadFeatures{
			MetaData:    true,
			ICCProfile:  true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats: []pixelformat.Format{
				pixelformat.BPP32RGBA, pixelformat.BPP24RGB,
				pixelformat.BPP8Gray, pixelformat.BPP16GrayAlpha,
				pixelformat.BPP8Indexed,
			},
			Compressions:       []codec.Compression{"DEFLATE"},
			DefaultCompression: "DEFLATE",
		},
	}
}

// Codec implements codec.Codec for single-frame PNG.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
