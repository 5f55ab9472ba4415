package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"

	"github.com/klauspost/compress/zlib"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// reverseTextKeyMap is textKeyMap inverted, used to pick the PNG keyword
// for a MetaData node's key on save.
var reverseTextKeyMap = map[rimage.MetaKey]string{
	rimage.MetaTitle:        "Title",
	rimage.MetaAuthor:       "Author",
	rimage.MetaDescription:  "Description",
	rimage.MetaCopyright:    "Copyright",
	rimage.MetaCreationTime: "Creation Time",
	rimage.MetaSoftware:     "Software",
	rimage.MetaComment:      "Comment",
}

// rgbaBridge adapts any rimage.Image pixel format to image.Image via
// convert.DecodeRGBA8, so stdlib's encoder never needs to know the
// source pixel format. Always encoded as NRGBA; stdlib's encoder writes
// such a generic image as 8-bit RGB when every pixel is opaque and as
// 8-bit RGBA otherwise, never as grayscale or paletted.
type rgbaBridge struct {
	img *rimage.Image
}

func (b *rgbaBridge) ColorModel() color.Model { return color.NRGBAModel }

func (b *rgbaBridge) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.img.Width, b.img.Height)
}

func (b *rgbaBridge) At(x, y int) color.Color {
	r, g, bl, a := convert.DecodeRGBA8(b.img, x, y)
	return color.NRGBA{R: r, G: g, B: bl, A: a}
}

type saveState struct {
	io   iostream.Io
	opts *codec.SaveOptions

	frameSaved bool
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if s.frameSaved {
		return status.New(status.ConflictingOperation)
	}
	return nil
}

func (s *saveState) Frame(img *rimage.Image) error {
	s.frameSaved = true

	var buf bytes.Buffer
	enc := stdpng.Encoder{CompressionLevel: compressionLevelOf(s.opts)}
	if err := enc.Encode(&buf, &rgbaBridge{img: img}); err != nil {
		return status.Wrap(status.UnderlyingCodec, "png: encode", err)
	}

	ancillary := buildAncillaryChunks(img)
	out := insertBeforeIDAT(buf.Bytes(), ancillary)
	return s.io.StrictWrite(out)
}

func (s *saveState) Finish() error { return nil }

func compressionLevelOf(opts *codec.SaveOptions) stdpng.CompressionLevel {
	if opts == nil {
		return stdpng.DefaultCompression
	}
	switch {
	case opts.CompressionLevel <= 0:
		return stdpng.DefaultCompression
	case opts.CompressionLevel >= 90:
		return stdpng.BestCompression
	case opts.CompressionLevel <= 10:
		return stdpng.BestSpeed
	default:
		return stdpng.DefaultCompression
	}
}

// buildAncillaryChunks renders iCCP and tEXt chunks for img's attached
// metadata, in the byte-exact format a PNG reader expects: 4-byte length,
// 4-byte type, data, 4-byte CRC32 of type+data.
func buildAncillaryChunks(img *rimage.Image) []byte {
	var out []byte

	if img.ICCProfile != nil && len(img.ICCProfile.Data) > 0 {
		name := img.ICCProfile.Name
		if name == "" {
			name = "icc"
		}
		var data bytes.Buffer
		data.WriteString(name)
		data.WriteByte(0)
		data.WriteByte(0) // compression method: zlib
		w := zlib.NewWriter(&data)
		_, _ = w.Write(img.ICCProfile.Data)
		_ = w.Close()
		out = append(out, pngChunk("iCCP", data.Bytes())...)
	}

	for n := img.MetaDataHead; n != nil; n = n.Next {
		keyword, ok := reverseTextKeyMap[n.Key]
		if !ok {
			if n.Key != rimage.MetaUnknown || n.FreeKey == "" {
				continue
			}
			keyword = n.FreeKey
		}
		value, err := n.Value.String()
		if err != nil {
			continue
		}

		var data bytes.Buffer
		data.WriteString(keyword)
		data.WriteByte(0)
		data.WriteString(value)
		out = append(out, pngChunk("tEXt", data.Bytes())...)
	}

	return out
}

func pngChunk(typ string, data []byte) []byte {
	chunk := make([]byte, 0, 12+len(data))
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	chunk = append(chunk, length[:]...)
	chunk = append(chunk, typ...)
	chunk = append(chunk, data...)

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	return append(chunk, sum[:]...)
}

// insertBeforeIDAT splices extra (already chunk-framed) bytes right before
// the first IDAT chunk of an encoded PNG file, the position every
// ancillary chunk type (iCCP, tEXt, zTXt, iTXt) is required to precede.
func insertBeforeIDAT(png []byte, extra []byte) []byte {
	if len(extra) == 0 {
		return png
	}

	pos := 8
	for pos+8 <= len(png) {
		length := int(binary.BigEndian.Uint32(png[pos : pos+4]))
		typ := string(png[pos+4 : pos+8])
		if typ == "IDAT" {
			out := make([]byte, 0, len(png)+len(extra))
			out = append(out, png[:pos]...)
			out = append(out, extra...)
			out = append(out, png[pos:]...)
			return out
		}
		pos += 8 + length + 4
	}

	return png
}
