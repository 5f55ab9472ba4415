// Package psd implements the Photoshop Document format: a planar,
// optionally PackBits-RLE-compressed raster wrapped in a fixed-size
// big-endian header. Grounded directly on
// original_source/src/sail-codecs/psd/psd.c; no PSD library appears
// anywhere in the example corpus, so both load and the byte-level
// helpers are hand-rolled against iostream.Io.
package psd

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/status"
)

const psdMagic = 0x38425053 // "8BPS"

var monoPalette = []byte{255, 255, 255, 0, 0, 0}

type psdMode uint16

const (
	modeBitmap       psdMode = 0
	modeGrayscale    psdMode = 1
	modeIndexed      psdMode = 2
	modeRGB          psdMode = 3
	modeCMYK         psdMode = 4
	modeMultichannel psdMode = 7
	modeDuotone      psdMode = 8
	modeLab          psdMode = 9
)

type psdCompression uint16

const (
	compressionNone psdCompression = 0
	compressionRLE  psdCompression = 1
)

// Info describes the PSD codec: a single still frame, planar RLE or raw
// raster, load-only (the reference codec never implemented saving either).
func Info() *codec.Info {
	return &codec.Info{
		Name:        "PSD",
		Description: "Photoshop Document",
		MIMETypes:   []string{"image/vnd.adobe.photoshop"},
		Extensions:  []string{"psd", "pdd"},
		Signatures: []codec.Signature{
			{Pattern: []byte{0x38, 0x42, 0x50, 0x53}},
		},
		Load: codec.LoadFeatures{
			SourceImage: true,
		},
	}
}

// Codec implements codec.Codec for PSD files. Saving is unsupported, as
// in the reference codec (all four save entry points there are stubs).
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	if err := checkMagic(io); err != nil {
		return nil, err
	}
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return nil, status.New(status.NotImplemented)
}
