// Package gif implements the animated GIF codec of spec section 4.6.2:
// disposal-method canvas composition on load, Wu-quantized LZW encoding on
// save, grounded on the disposal/composition pattern also visible (in
// simplified single-frame form) in other_examples/80f37fe0_tenox7-gip__gif.go.go.
// The wire codec (LZW, block/sub-block framing, interlacing) is stdlib
// image/gif: no pack repo ships a from-scratch GIF bitstream parser, and
// stdlib's is the same one every pure-Go GIF tool ultimately calls.
package gif

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

// Info describes the GIF codec: animated, multi-page, metadata-bearing on
// load; single pixel format in, Wu-quantized indexed out, on save.
func Info() *codec.Info {
	return &codec.Info{
		Name:        "GIF",
		Description: "Graphics Interchange Format",
		MIMETypes:   []string{"image/gif"},
		Extensions:  []string{"gif"},
		Signatures: []codec.Signature{
			{Pattern: []byte("GIF87a")},
			{Pattern: []byte("GIF89a")},
		},
		Load: codec.LoadFeatures{
			Animated:   true,
			MultiPage:  true,
			MetaData:   true,
			Interlaced: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats:       []pixelformat.Format{pixelformat.BPP32RGBA},
			Compressions:       []codec.Compression{"LZW"},
			DefaultCompression: "LZW",
		},
	}
}

// Codec implements codec.Codec for GIF files.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
