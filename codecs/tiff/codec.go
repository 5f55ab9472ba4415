package tiff

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

// Info describes the TIFF codec: baseline 8/16-bit raster TIFF
// (delegated to golang.org/x/image/tiff) plus the three HDR photometric
// modes the teacher's own decoder implements (32-bit float RGB, 16-bit
// SGI LogL, 16-bit SGI LogLuv).
func Info() *codec.Info {
	return &codec.Info{
		Name:        "TIFF",
		Description: "Tagged Image File Format",
		MIMETypes:   []string{"image/tiff"},
		Extensions:  []string{"tif", "tiff"},
		Signatures: []codec.Signature{
			{Pattern: []byte(leHeader)},
			{Pattern: []byte(beHeader)},
		},
		Load: codec.LoadFeatures{
			MetaData:    true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats: []pixelformat.Format{
				pixelformat.BPP96RGBFloat,
				pixelformat.BPP32RGBA, pixelformat.BPP24RGB,
				pixelformat.BPP8Gray, pixelformat.BPP16Gray,
			},
			Compressions:       []codec.Compression{"NONE", "DEFLATE"},
			DefaultCompression: "DEFLATE",
		},
	}
}

// Codec implements codec.Codec for TIFF files.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
