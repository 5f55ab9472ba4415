// Package codec defines the uniform codec ABI (spec section 4.2) and the
// CodecInfo/registry machinery (spec section 4.1) every format plugs into,
// generalizing the teacher's single init()-registered image.RegisterFormat
// entry point (reader.go) into a multi-codec, capability-described runtime.
package codec

import (
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

// LoadFeature is a bit in the LoadOptions/CodecInfo feature bit-set.
type LoadFeature uint32

const (
	LoadMetaData LoadFeature = 1 << iota
	LoadICCProfile
	LoadSourceImage
	Deinterlace
)

// SaveFeature mirrors LoadFeature for the save direction, plus the
// bit-set the CodecInfo declares as accepted/supported.
type SaveFeature = LoadFeature

// Compression is a codec-declared compression scheme name (e.g. "LZW",
// "RLE", "DEFLATE", "NONE"); codecs interpret their own string set.
type Compression string

// LoadOptions configures a load session (spec section 4.2).
type LoadOptions struct {
	Features LoadFeature
	Tuning   *variant.HashMap
}

// SaveOptions configures a save session (spec section 4.2).
type SaveOptions struct {
	Compression      Compression
	CompressionLevel float64
	Features         SaveFeature
	Tuning           *variant.HashMap
}

// DefaultLoadOptions returns the zero-tuning, full-feature default.
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		Features: LoadMetaData | LoadICCProfile | LoadSourceImage,
		Tuning:   variant.NewHashMap(),
	}
}

// DefaultSaveOptions returns a save options value with an empty tuning map
// and no compression set; each codec treats the empty Compression as its
// own default.
func DefaultSaveOptions() *SaveOptions {
	return &SaveOptions{Tuning: variant.NewHashMap()}
}

// LoadState is the opaque per-session state returned by Codec.LoadInit.
type LoadState interface {
	// SeekNextFrame advances to the next frame, returning a pixel-less
	// skeleton image, or status.NoMoreFrames when exhausted.
	SeekNextFrame() (*rimage.Image, error)
	// Frame fills img.Pixels (already allocated by the driver).
	Frame(img *rimage.Image) error
	// Finish releases the state; always called by the driver.
	Finish() error
}

// SaveState is the opaque per-session state returned by Codec.SaveInit.
type SaveState interface {
	SeekNextFrame(img *rimage.Image) error
	Frame(img *rimage.Image) error
	Finish() error
}

// Codec is the uniform ABI every format implements (spec section 4.2):
// eight operations split across two independent state objects.
type Codec interface {
	Info() *Info
	LoadInit(io iostream.Io, opts *LoadOptions) (LoadState, error)
	SaveInit(io iostream.Io, opts *SaveOptions) (SaveState, error)
}
