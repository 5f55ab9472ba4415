// Package jpegxl registers the JPEG-XL format descriptor without a working
// decoder/encoder. No JPEG-XL Go library exists anywhere in the example
// corpus or other_examples/, and a from-scratch JPEG-XL bitstream decoder
// is out of reach of what this module can ground on the pack (the format's
// own reference implementation is a multi-thousand-line C++ codebase, not
// something any corpus file sketches even partially). Registering the
// codec with real signatures/MIME/extensions keeps registry and driver
// behavior (codec lookup by magic/extension/MIME) correct for this format
// even though load/save are unimplemented, per spec section 8 property 4
// (every declared codec is enumerable and selectable).
package jpegxl

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/status"
)

func Info() *codec.Info {
	return &codec.Info{
		Name:        "JPEGXL",
		Description: "JPEG XL",
		MIMETypes:   []string{"image/jxl"},
		Extensions:  []string{"jxl"},
		Signatures: []codec.Signature{
			{Pattern: []byte{0xFF, 0x0A}},                                           // raw codestream
			{Pattern: []byte{0, 0, 0, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}}, // ISOBMFF container
		},
	}
}

// Codec is a registered-but-unimplemented stub: Info is real, load/save
// are not.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return nil, status.New(status.UnsupportedCodecFeature)
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return nil, status.New(status.UnsupportedCodecFeature)
}
