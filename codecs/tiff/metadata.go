package tiff

import (
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

// asciiKeyMap maps the TIFF ASCII tags this codec reads/writes to the
// closed rimage.MetaKey enumeration (spec section 3), the same role
// codecs/png's textKeyMap plays for tEXt keywords.
var asciiKeyMap = []struct {
	tag uint16
	key rimage.MetaKey
}{
	{tImageDescription, rimage.MetaDescription},
	{tArtist, rimage.MetaArtist},
	{tCopyright, rimage.MetaCopyright},
	{tDateTime, rimage.MetaCreationTime},
	{tSoftware, rimage.MetaSoftware},
	{tDocumentName, rimage.MetaTitle},
}

// attachMetadata appends one rimage.MetaData node per populated ASCII tag
// found in d, in asciiKeyMap order, plus tMake/tModel as free-keyed
// entries (TIFF has no closed MetaKey slot for camera make/model).
func attachMetadata(d *idf, img *rimage.Image) {
	for _, m := range asciiKeyMap {
		s, ok := d.ascii[m.tag]
		if !ok || s == "" {
			continue
		}
		rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: m.key, Value: variant.FromString(s)})
	}
	if mk, ok := d.ascii[tMake]; ok && mk != "" {
		rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaUnknown, FreeKey: "Make", Value: variant.FromString(mk)})
	}
	if model, ok := d.ascii[tModel]; ok && model != "" {
		rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaUnknown, FreeKey: "Model", Value: variant.FromString(model)})
	}
}

// metadataEntries collects (tag, value) pairs to encode as ASCII IFD
// entries from img's metadata list, the write-side mirror of
// attachMetadata, used by the hand-rolled HDR writer.
func metadataEntries(img *rimage.Image) []struct {
	tag   uint16
	value string
} {
	reverse := make(map[rimage.MetaKey]uint16, len(asciiKeyMap))
	for _, m := range asciiKeyMap {
		reverse[m.key] = m.tag
	}

	var out []struct {
		tag   uint16
		value string
	}
	for n := img.MetaDataHead; n != nil; n = n.Next {
		tag, ok := reverse[n.Key]
		if !ok || n.Value == nil {
			continue
		}
		s, err := n.Value.String()
		if err != nil {
			continue
		}
		out = append(out, struct {
			tag   uint16
			value string
		}{tag, s})
	}
	return out
}

// compressionName maps a tCompression code to a codec.Compression name
// (only NONE and DEFLATE also appear in CodecInfo.Save.Compressions), covering only
// the standard registry TIFF 6.0 and its widely deployed extensions
// define; no private WebP/ZSTD tag numbers are fabricated since none could
// be verified against a spec or an example in the pack.
func compressionName(c uint) string {
	switch c {
	case cNone, 0:
		return "NONE"
	case cLZW:
		return "LZW"
	case cDeflate, cDeflateOld:
		return "DEFLATE"
	case cPackBits:
		return "PACKBITS"
	case cSGILogRLE:
		return "SGILOG"
	default:
		return "UNKNOWN"
	}
}
