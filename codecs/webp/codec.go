package webp

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

// Info describes the WebP codec: animated RIFF container, canvas
// composition with disposal/blending, ICCP/EXIF/XMP metadata chunks.
func Info() *codec.Info {
	return &codec.Info{
		Name:        "WEBP",
		Description: "WebP",
		MIMETypes:   []string{"image/webp"},
		Extensions:  []string{"webp"},
		Signatures: []codec.Signature{
			{Offset: 8, Pattern: []byte(fourCCWEBP)},
		},
		Load: codec.LoadFeatures{
			Animated:    true,
			MetaData:    true,
			ICCProfile:  true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats:       []pixelformat.Format{pixelformat.BPP32RGBA},
			Compressions:       []codec.Compression{"LOSSLESS"},
			DefaultCompression: "LOSSLESS",
		},
	}
}

// Codec implements codec.Codec for WebP, single and animated.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	data, err := readAll(io)
	if err != nil {
		return nil, err
	}
	if err := checkSignature(data); err != nil {
		return nil, err
	}

	c, err := parseFile(data)
	if err != nil {
		return nil, err
	}

	return &loadState{io: io, opts: opts, c: c}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}
