// Package rimage implements the image data model of spec section 3: Image,
// Palette, ICC profile, Resolution, SourceImage provenance, MetaData and
// the special-properties map, generalizing the teacher's decoder-local
// image.Config plus hdr.RGB/hdrcolor.XYZ destination buffers (decoder.go,
// reader.go) into one self-contained value type shared by every codec.
package rimage

import (
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/status"
	"github.com/mdouchement/rasterio/variant"
)

// Orientation is one of the 8 EXIF-style orientations spec section 3 lists.
type Orientation int

const (
	OrientationNormal Orientation = iota
	OrientationRotated90
	OrientationRotated180
	OrientationRotated270
	OrientationMirroredHorizontally
	OrientationMirroredVertically
	OrientationMirroredHorizontallyRotated90
	OrientationMirroredHorizontallyRotated270
)

// ResolutionUnit is the unit a Resolution's x/y values are expressed in.
type ResolutionUnit int

const (
	ResolutionUnitUnknown ResolutionUnit = iota
	ResolutionUnitMicrometer
	ResolutionUnitCentimeter
	ResolutionUnitMeter
	ResolutionUnitInch
)

// Resolution carries image DPI/DPC information.
type Resolution struct {
	X, Y float64
	Unit ResolutionUnit
}

// ICC is an opaque ICC color profile blob plus its descriptive name.
type ICC struct {
	Data []byte
	Name string
}

// Palette is a packed color table, typically BPP24_RGB or BPP32_RGBA.
type Palette struct {
	Format pixelformat.Format
	Count  int
	Data   []byte
}

// DefaultMonochromePalette returns the auto-attached two-entry black/white
// palette for 1-bit monochrome images (spec section 3).
func DefaultMonochromePalette() *Palette {
	return &Palette{
		Format: pixelformat.BPP24RGB,
		Count:  2,
		Data:   []byte{0, 0, 0, 255, 255, 255},
	}
}

// SourceImage records how the pixels looked before any codec-side
// normalization, so a caller can make informed re-encoding decisions.
type SourceImage struct {
	PixelFormat      pixelformat.Format
	Compression      string
	ChromaSubsampling string
	Interlaced       bool
}

// MetaKey is a tag from the closed metadata enumeration of spec section 3.
type MetaKey int

const (
	MetaUnknown MetaKey = iota
	MetaArtist
	MetaAuthor
	MetaComment
	MetaCopyright
	MetaCreationTime
	MetaDescription
	MetaEXIF
	MetaICCP
	MetaIPTC
	MetaXMP
	MetaJUMBF
	MetaSoftware
	MetaTitle
	MetaURL
)

// MetaData is one singly-linked-list node carrying a tagged key and a
// dynamically typed value. FreeKey is non-empty only when Key == MetaUnknown
// (spec invariant in section 3).
type MetaData struct {
	Key     MetaKey
	FreeKey string
	Value   *variant.Variant
	Next    *MetaData
}

// Append adds a new node to the end of the list rooted at *head.
func Append(head **MetaData, node *MetaData) {
	if *head == nil {
		*head = node
		return
	}
	cur := *head
	for cur.Next != nil {
		cur = cur.Next
	}
	cur.Next = node
}

// PixelOwnership distinguishes buffers the Image must free on Destroy from
// ones merely aliased by it (spec section 3, "Lifecycle").
type PixelOwnership int

const (
	Owned PixelOwnership = iota
	Shallow
)

// Image is the central value object: pixel buffer plus the full metadata
// graph. Width/Height/PixelFormat/BytesPerLine/Pixels are required; every
// other field is optional and nil/zero when absent.
type Image struct {
	Width         int
	Height        int
	PixelFormat   pixelformat.Format
	BytesPerLine  int
	Pixels        []byte
	PixelOwnership PixelOwnership

	Gamma            float64
	DelayMilliseconds int // -1 == static, >= 0 == animation frame delay
	Orientation      Orientation

	Palette      *Palette
	ICCProfile   *ICC
	Resolution   *Resolution
	Source       *SourceImage
	MetaDataHead *MetaData
	Properties   *variant.HashMap // special-properties, codec-{property} keys
}

// New allocates a skeleton image (no pixel buffer) with the minimum
// bytes-per-line for the given dimensions/format, matching what a codec's
// load_seek_next_frame returns before the driver allocates pixels (spec
// section 4.2/4.3).
func New(width, height int, format pixelformat.Format) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, status.New(status.InvalidImageDimensions)
	}
	return &Image{
		Width:             width,
		Height:            height,
		PixelFormat:       format,
		BytesPerLine:      format.BytesPerLine(width),
		DelayMilliseconds: -1,
	}, nil
}

// AllocatePixels gives the image an owned buffer sized BytesPerLine*Height,
// the driver's allocation step between seek_next_frame and frame (spec
// section 4.3).
func (img *Image) AllocatePixels() {
	img.Pixels = make([]byte, img.BytesPerLine*img.Height)
	img.PixelOwnership = Owned
}

// Validate checks the invariants of spec section 3/8: bytes-per-line
// consistency, indexed images carrying a palette, and pixel-buffer length.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return status.New(status.InvalidImageDimensions)
	}
	min := img.PixelFormat.BytesPerLine(img.Width)
	if img.BytesPerLine < min {
		return status.New(status.InvalidBytesPerLine)
	}
	if img.PixelFormat.IsIndexed() && img.Palette == nil {
		return status.New(status.MissingPalette)
	}
	if img.Pixels != nil && len(img.Pixels) != img.BytesPerLine*img.Height {
		return status.New(status.InvalidImage)
	}
	return nil
}

// Row returns the scanline slice for y, a BytesPerLine-wide window into
// Pixels (no copy).
func (img *Image) Row(y int) []byte {
	off := y * img.BytesPerLine
	return img.Pixels[off : off+img.BytesPerLine]
}

// Destroy releases every owned sub-object. Shallow-owned pixel buffers are
// left untouched, per spec section 3's ownership rule; this is the single
// release operation the spec's lifecycle section calls for.
func (img *Image) Destroy() {
	if img == nil {
		return
	}
	if img.PixelOwnership == Owned {
		img.Pixels = nil
	}
	img.Palette = nil
	img.ICCProfile = nil
	img.Resolution = nil
	img.Source = nil
	img.MetaDataHead = nil
	img.Properties = nil
}

// ResizedSkeleton returns a new pixel-less Image with the given dimensions
// but this image's pixel format and the same minimum bytes-per-line rule,
// used by rotate operations that swap width/height (spec section 4.4).
func (img *Image) ResizedSkeleton(width, height int) (*Image, error) {
	out, err := New(width, height, img.PixelFormat)
	if err != nil {
		return nil, err
	}
	out.Gamma = img.Gamma
	out.DelayMilliseconds = img.DelayMilliseconds
	out.Palette = img.Palette
	out.ICCProfile = img.ICCProfile
	out.Resolution = img.Resolution
	out.Source = img.Source
	out.MetaDataHead = img.MetaDataHead
	return out, nil
}

// CopySkeleton returns a new Image sharing this image's attributes but not
// its pixel buffer, used when the driver must hand codecs an image without
// committing to pixel storage yet (probe path, spec section 4.3).
func (img *Image) CopySkeleton() *Image {
	cp := *img
	cp.Pixels = nil
	cp.PixelOwnership = Shallow
	return &cp
}
