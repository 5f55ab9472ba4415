package pnm

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

// Info describes the PNM/PAM codec: seven sub-formats behind one magic
// number byte, single still frame, no compression.
func Info() *codec.Info {
	return &codec.Info{
		Name:        "PNM",
		Description: "Portable Any Map",
		MIMETypes:   []string{"image/x-portable-anymap"},
		Extensions:  []string{"pnm", "pbm", "pgm", "ppm", "pam"},
		Signatures: []codec.Signature{
			{Pattern: []byte("P1")}, {Pattern: []byte("P2")}, {Pattern: []byte("P3")},
			{Pattern: []byte("P4")}, {Pattern: []byte("P5")}, {Pattern: []byte("P6")},
			{Pattern: []byte("P7")},
		},
		Load: codec.LoadFeatures{
			MetaData:    true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats: []pixelformat.Format{
				pixelformat.BPP1Indexed,
				pixelformat.BPP8Gray, pixelformat.BPP16Gray,
				pixelformat.BPP16GrayAlpha, pixelformat.BPP32GrayAlpha,
				pixelformat.BPP24RGB, pixelformat.BPP48RGB,
				pixelformat.BPP32RGBA, pixelformat.BPP64RGBA,
			},
			Compressions:       []codec.Compression{"NONE"},
			DefaultCompression: "NONE",
		},
	}
}

// Codec implements codec.Codec for PNM/PAM files.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
