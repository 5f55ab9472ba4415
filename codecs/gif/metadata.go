package gif

import (
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

// metadata holds the two extension blocks spec section 4.6.2 asks for:
// "Extensions captured. Comment extension -> Comment metadata; application
// extension -> Software metadata (first 8 bytes per spec)." Go's image/gif
// silently discards both, so the raw stream is rescanned for them here.
type metadata struct {
	comment  string
	software string
}

// scanMetadata walks the block structure (logical screen descriptor,
// optional global color table, then extension/image-descriptor/trailer
// blocks) far enough to collect comment and application extensions,
// skipping image data it doesn't need to interpret.
func scanMetadata(data []byte) metadata {
	var m metadata
	if len(data) < 13 {
		return m
	}

	flags := data[10]
	pos := 13
	if flags&0x80 != 0 {
		pos += 3 * (1 << (int(flags&0x07) + 1))
	}

	for pos < len(data) {
		switch data[pos] {
		case 0x21: // extension introducer
			if pos+1 >= len(data) {
				return m
			}
			label := data[pos+1]
			content, next, ok := readSubBlocks(data, pos+2)
			if !ok {
				return m
			}
			switch label {
			case 0xFE: // comment extension
				if m.comment == "" {
					m.comment = string(content)
				}
			case 0xFF: // application extension
				if m.software == "" && len(content) >= 8 {
					m.software = string(content[:8])
				}
			}
			pos = next

		case 0x2C: // image descriptor
			pos++
			if pos+9 > len(data) {
				return m
			}
			packed := data[pos+8]
			pos += 9
			if packed&0x80 != 0 {
				pos += 3 * (1 << (int(packed&0x07) + 1))
			}
			if pos >= len(data) {
				return m
			}
			pos++ // LZW minimum code size byte
			_, next, ok := readSubBlocks(data, pos)
			if !ok {
				return m
			}
			pos = next

		case 0x3B: // trailer
			return m

		default:
			return m
		}
	}
	return m
}

// readSubBlocks concatenates a length-prefixed sub-block sequence
// terminated by a zero-length block, common to every GIF extension and
// image-data block.
func readSubBlocks(data []byte, pos int) (content []byte, next int, ok bool) {
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return content, pos, true
		}
		if pos+n > len(data) {
			return nil, 0, false
		}
		content = append(content, data[pos:pos+n]...)
		pos += n
	}
	return nil, 0, false
}

func attachMetadata(img *rimage.Image, m metadata) {
	if m.comment != "" {
		rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaComment, Value: variant.FromString(m.comment)})
	}
	if m.software != "" {
		rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaSoftware, Value: variant.FromString(m.software)})
	}
}
