package openexr

import (
	"encoding/binary"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/status"
)

const magicNumber = 0x01312f76

var compressionNames = [...]string{
	"NONE", "RLE", "ZIPS", "ZIP", "PIZ", "PXR24", "B44", "B44A", "DWAA", "DWAB",
}

type channelType int32

const (
	ctUint  channelType = 0
	ctHalf  channelType = 1
	ctFloat channelType = 2
)

type channel struct {
	name string
	typ  channelType
}

type header struct {
	width, height int
	channels      []channel
	compression   byte
}

func (h *header) compressionName() string {
	if int(h.compression) < len(compressionNames) {
		return compressionNames[h.compression]
	}
	return "UNKNOWN"
}

// readHeader consumes the magic number, version and flat attribute list
// (name/type/size/data tuples terminated by a zero-length name) of an
// OpenEXR file, keeping only the "channels", "dataWindow" and
// "compression" attributes needed to derive a pixel-less skeleton image
// and its source-image compression name. It never touches scanline
// or tile pixel data.
func readHeader(io iostream.Io) (*header, error) {
	magic := make([]byte, 4)
	if err := io.StrictRead(magic); err != nil {
		return nil, status.Wrap(status.ReadIO, "openexr: read magic number", err)
	}
	if binary.LittleEndian.Uint32(magic) != magicNumber {
		return nil, status.New(status.InvalidImage)
	}

	version := make([]byte, 4)
	if err := io.StrictRead(version); err != nil {
		return nil, status.Wrap(status.ReadIO, "openexr: read version field", err)
	}

	h := &header{}
	for {
		name, err := readCString(io)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		if _, err := readCString(io); err != nil { // attribute type name, unused
			return nil, err
		}

		sizeBuf := make([]byte, 4)
		if err := io.StrictRead(sizeBuf); err != nil {
			return nil, status.Wrap(status.ReadIO, "openexr: read attribute size", err)
		}
		size := int32(binary.LittleEndian.Uint32(sizeBuf))
		if size < 0 {
			return nil, status.Newf(status.InvalidImage, "openexr: negative attribute size for %q", name)
		}

		value := make([]byte, size)
		if size > 0 {
			if err := io.StrictRead(value); err != nil {
				return nil, status.Wrap(status.ReadIO, "openexr: read attribute value", err)
			}
		}

		switch name {
		case "channels":
			chans, err := parseChannelList(value)
			if err != nil {
				return nil, err
			}
			h.channels = chans
		case "dataWindow":
			if len(value) != 16 {
				return nil, status.Newf(status.InvalidImage, "openexr: malformed dataWindow attribute (%d bytes)", len(value))
			}
			xmin := int32(binary.LittleEndian.Uint32(value[0:4]))
			ymin := int32(binary.LittleEndian.Uint32(value[4:8]))
			xmax := int32(binary.LittleEndian.Uint32(value[8:12]))
			ymax := int32(binary.LittleEndian.Uint32(value[12:16]))
			h.width = int(xmax-xmin) + 1
			h.height = int(ymax-ymin) + 1
		case "compression":
			if len(value) != 1 {
				return nil, status.Newf(status.InvalidImage, "openexr: malformed compression attribute (%d bytes)", len(value))
			}
			h.compression = value[0]
		}
	}

	if h.width <= 0 || h.height <= 0 {
		return nil, status.New(status.InvalidImageDimensions)
	}
	if len(h.channels) == 0 {
		return nil, status.New(status.InvalidImage)
	}
	return h, nil
}

func readCString(io iostream.Io) (string, error) {
	var buf []byte
	one := make([]byte, 1)
	for {
		if err := io.StrictRead(one); err != nil {
			return "", status.Wrap(status.ReadIO, "openexr: read attribute name", err)
		}
		if one[0] == 0 {
			return string(buf), nil
		}
		buf = append(buf, one[0])
	}
}

// parseChannelList decodes a "chlist" attribute value: repeated
// name/pixelType/pLinear+reserved/xSampling/ySampling records terminated
// by a zero-length name.
func parseChannelList(data []byte) ([]channel, error) {
	var out []channel
	pos := 0
	for {
		start := pos
		for pos < len(data) && data[pos] != 0 {
			pos++
		}
		if pos >= len(data) {
			return nil, status.New(status.InvalidImage)
		}
		name := string(data[start:pos])
		pos++ // skip the terminator
		if name == "" {
			break
		}
		if pos+16 > len(data) {
			return nil, status.New(status.InvalidImage)
		}
		typ := channelType(int32(binary.LittleEndian.Uint32(data[pos : pos+4])))
		pos += 16 // pixelType(4) + pLinear/reserved(4) + xSampling(4) + ySampling(4)
		out = append(out, channel{name: name, typ: typ})
	}
	return out, nil
}

// formatFor derives the closest pixelformat.Format from an OpenEXR
// channel list: grayscale ("Y") or RGB(A) channel sets, each in HALF or
// FLOAT precision. UINT channels and any other channel layout have no
// matching rasterio format.
func formatFor(channels []channel) (pixelformat.Format, bool) {
	byName := make(map[string]channelType, len(channels))
	for _, c := range channels {
		byName[c.name] = c.typ
	}

	switch {
	case hasAll(byName, "R", "G", "B", "A"):
		switch byName["R"] {
		case ctHalf:
			return pixelformat.BPP64RGBAHalf, true
		case ctFloat:
			return pixelformat.BPP128RGBAFloat, true
		}
	case hasAll(byName, "R", "G", "B"):
		switch byName["R"] {
		case ctHalf:
			return pixelformat.BPP48RGBHalf, true
		case ctFloat:
			return pixelformat.BPP96RGBFloat, true
		}
	case hasAll(byName, "Y"):
		switch byName["Y"] {
		case ctHalf:
			return pixelformat.BPP16GrayHalf, true
		case ctFloat:
			return pixelformat.BPP32GrayFloat, true
		}
	}
	return 0, false
}

func hasAll(byName map[string]channelType, names ...string) bool {
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			return false
		}
	}
	return true
}
