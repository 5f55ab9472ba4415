package webp

import (
	"encoding/binary"

	"github.com/mdouchement/rasterio/status"
)

// disposeMode/blendMode mirror the ANMF flag byte's two bits (spec §4.6.5):
// bit 0 selects disposal, bit 1 selects blending. Default (no bits set) is
// "leave in place" + "blend", matching the container spec's documented
// default and deepteams-webp/mux/demux.go's parseANMF.
type disposeMode int

const (
	disposeNone disposeMode = iota
	disposeBackground
)

type blendMode int

const (
	blendAlpha blendMode = iota
	blendNone
)

// rgba is a plain byte-quad color, used for the canvas background.
type rgba struct{ r, g, b, a byte }

// frame is one parsed ANMF entry (or the sole frame of a non-animated
// file), carrying its placement/timing plus the raw chunks needed to
// decode its bitstream.
type frame struct {
	x, y          int
	width, height int
	durationMS    int
	dispose       disposeMode
	blend         blendMode

	// wrapped is a complete RIFF/WEBP file built around this frame's own
	// ALPH/VP8/VP8L sub-chunks (or, for a non-animated source, the
	// original file bytes verbatim), ready for golang.org/x/image/webp.
	wrapped []byte
}

// container is the result of parsing a whole WebP file: canvas dimensions,
// loop/background info (zero value for non-animated files, where the
// canvas is simply the single frame's own dimensions) and metadata chunks.
type container struct {
	canvasWidth, canvasHeight int
	animated                  bool
	background                rgba
	loopCount                 int
	frames                    []frame

	iccp []byte
	exif []byte
	xmp  []byte
}

func parseFile(data []byte) (*container, error) {
	if len(data) < riffHeaderSize || string(data[0:4]) != fourCCRIFF || string(data[8:12]) != fourCCWEBP {
		return nil, status.New(status.InvalidImage)
	}
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	end := 8 + int(riffSize)
	if end > len(data) {
		end = len(data)
	}

	chunks, err := readChunks(data[12:end])
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, status.New(status.InvalidImage)
	}

	c := &container{}

	first := chunks[0]
	if first.fourCC != fourCCVP8X {
		// Simple file: single VP8 or VP8L chunk, no extended features.
		if first.fourCC != fourCCVP8 && first.fourCC != fourCCVP8L {
			return nil, status.New(status.InvalidImage)
		}
		w, h, err := bitstreamDimensions(first.fourCC, first.data)
		if err != nil {
			return nil, err
		}
		c.canvasWidth, c.canvasHeight = w, h
		c.frames = []frame{{
			x: 0, y: 0, width: w, height: h,
			durationMS: -1, // static
			dispose:    disposeNone,
			blend:      blendNone,
			wrapped:    append([]byte(nil), data...),
		}}
		return c, nil
	}

	if len(first.data) < vp8xChunkSize {
		return nil, status.New(status.InvalidImage)
	}
	flags := first.data[0]
	c.canvasWidth = int(uint32(first.data[4])|uint32(first.data[5])<<8|uint32(first.data[6])<<16) + 1
	c.canvasHeight = int(uint32(first.data[7])|uint32(first.data[8])<<8|uint32(first.data[9])<<16) + 1
	hasAnim := flags&0x02 != 0

	var simpleAlpha, simpleImage []byte
	var simpleFourCC string

	for _, ch := range chunks[1:] {
		switch ch.fourCC {
		case fourCCICCP:
			c.iccp = ch.data
		case fourCCEXIF:
			c.exif = ch.data
		case fourCCXMP:
			c.xmp = ch.data
		case fourCCANIM:
			if len(ch.data) < animChunkSize {
				return nil, status.New(status.InvalidImage)
			}
			bg := binary.LittleEndian.Uint32(ch.data[0:4])
			c.background = rgba{r: byte(bg >> 16), g: byte(bg >> 8), b: byte(bg), a: byte(bg >> 24)}
			c.loopCount = int(binary.LittleEndian.Uint16(ch.data[4:6]))
		case fourCCANMF:
			f, err := parseANMF(ch.data)
			if err != nil {
				return nil, err
			}
			c.frames = append(c.frames, f)
		case fourCCALPH:
			simpleAlpha = ch.data
		case fourCCVP8, fourCCVP8L:
			simpleImage = ch.data
			simpleFourCC = ch.fourCC
		}
	}

	c.animated = hasAnim
	if !hasAnim {
		if simpleImage == nil {
			return nil, status.New(status.InvalidImage)
		}
		wrapped := wrapFrame(c.canvasWidth, c.canvasHeight, simpleAlpha, simpleFourCC, simpleImage)
		c.frames = []frame{{
			x: 0, y: 0, width: c.canvasWidth, height: c.canvasHeight,
			durationMS: -1,
			dispose:    disposeNone,
			blend:      blendNone,
			wrapped:    wrapped,
		}}
	}

	return c, nil
}

// parseANMF decodes one ANMF chunk's fixed 16-byte header and wraps its
// trailing ALPH/VP8/VP8L sub-chunks into a standalone WebP file.
func parseANMF(data []byte) (frame, error) {
	if len(data) < anmfChunkSize {
		return frame{}, status.New(status.InvalidImage)
	}

	f := frame{
		x:      int(uint32(data[0])|uint32(data[1])<<8|uint32(data[2])<<16) * 2,
		y:      int(uint32(data[3])|uint32(data[4])<<8|uint32(data[5])<<16) * 2,
		width:  int(uint32(data[6])|uint32(data[7])<<8|uint32(data[8])<<16) + 1,
		height: int(uint32(data[9])|uint32(data[10])<<8|uint32(data[11])<<16) + 1,
		durationMS: int(uint32(data[12]) | uint32(data[13])<<8 | uint32(data[14])<<16),
	}

	flagByte := data[15]
	if flagByte&0x01 != 0 {
		f.dispose = disposeBackground
	}
	if flagByte&0x02 != 0 {
		f.blend = blendNone
	} else {
		f.blend = blendAlpha
	}

	sub, err := readChunks(data[anmfChunkSize:])
	if err != nil {
		return frame{}, err
	}
	alpha, image, imageFourCC := firstImageChunk(sub)
	if image == nil {
		return frame{}, status.New(status.InvalidImage)
	}
	f.wrapped = wrapFrame(f.width, f.height, alpha, imageFourCC, image)

	return f, nil
}

// wrapFrame builds a minimal standalone RIFF/WEBP file (VP8X + optional
// ALPH + VP8/VP8L) around one frame's bitstream so it can be handed to
// golang.org/x/image/webp.Decode, which expects a complete file.
func wrapFrame(width, height int, alpha []byte, imageFourCC string, image []byte) []byte {
	var vp8x [vp8xChunkSize]byte
	if alpha != nil {
		vp8x[0] |= 0x10 // ALPHA flag
	}
	w, h := uint32(width-1), uint32(height-1)
	vp8x[4], vp8x[5], vp8x[6] = byte(w), byte(w>>8), byte(w>>16)
	vp8x[7], vp8x[8], vp8x[9] = byte(h), byte(h>>8), byte(h>>16)

	inner := writeChunk(nil, fourCCVP8X, vp8x[:])
	if alpha != nil {
		inner = writeChunk(inner, fourCCALPH, alpha)
	}
	inner = writeChunk(inner, imageFourCC, image)

	buf := make([]byte, 0, riffHeaderSize+len(inner))
	buf = append(buf, fourCCRIFF...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+len(inner)))
	buf = append(buf, size[:]...)
	buf = append(buf, fourCCWEBP...)
	buf = append(buf, inner...)
	return buf
}

// bitstreamDimensions reads just enough of a raw VP8/VP8L bitstream to
// recover its pixel dimensions, used only for the no-VP8X simple-file case
// where no canvas size is declared up front.
func bitstreamDimensions(fourCC string, data []byte) (width, height int, err error) {
	switch fourCC {
	case fourCCVP8L:
		if len(data) < 5 || data[0] != 0x2F {
			return 0, 0, status.New(status.InvalidImage)
		}
		bits := uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16 | uint32(data[4])<<24
		width = int(bits&0x3FFF) + 1
		height = int((bits>>14)&0x3FFF) + 1
		return width, height, nil
	case fourCCVP8:
		if len(data) < 10 {
			return 0, 0, status.New(status.InvalidImage)
		}
		width = int(binary.LittleEndian.Uint16(data[6:8]) & 0x3FFF)
		height = int(binary.LittleEndian.Uint16(data[8:10]) & 0x3FFF)
		return width, height, nil
	default:
		return 0, 0, status.New(status.InvalidImage)
	}
}
