package webp

import (
	"bytes"
	"encoding/binary"

	"github.com/HugoSmits86/nativewebp"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// saveState buffers every frame (nativewebp has no animation muxer of its
// own) and assembles the RIFF container on Finish, the same
// buffer-then-encode-on-Finish shape as codecs/gif's EncodeAll save. The
// reference C codec's webp.c leaves all four save entry points
// SAIL_ERROR_NOT_IMPLEMENTED; this is a from-scratch encoder grounded on
// spec §4.6.5's chunk layouts, since spec.md explicitly requires a WebP
// writer.
type saveState struct {
	io   iostream.Io
	opts *codec.SaveOptions

	width, height int
	frames        []encodedFrame
}

type encodedFrame struct {
	durationMS int
	alpha      []byte
	image      []byte
	imageFourCC string
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if s.width == 0 {
		s.width, s.height = img.Width, img.Height
	}
	if img.Width != s.width || img.Height != s.height {
		return status.New(status.InvalidImage)
	}
	return nil
}

func (s *saveState) Frame(img *rimage.Image) error {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, &rgbaBridge{img: img}, nil); err != nil {
		return status.Wrap(status.UnderlyingCodec, "webp: encode frame", err)
	}

	chunks, err := readChunks(buf.Bytes()[riffHeaderSize:])
	if err != nil {
		return err
	}
	alpha, image, imageFourCC := firstImageChunk(chunks)
	if image == nil {
		return status.New(status.InvalidImage)
	}

	duration := img.DelayMilliseconds
	if duration < 0 {
		duration = 0
	}

	s.frames = append(s.frames, encodedFrame{
		durationMS:  duration,
		alpha:       alpha,
		image:       image,
		imageFourCC: imageFourCC,
	})
	return nil
}

// Finish writes a single-image WebP file directly when there was only one
// frame, or a full VP8X/ANIM/ANMF animated container otherwise.
func (s *saveState) Finish() error {
	if len(s.frames) == 0 {
		return status.New(status.InvalidImage)
	}

	var out []byte
	if len(s.frames) == 1 {
		out = wrapFrame(s.width, s.height, s.frames[0].alpha, s.frames[0].imageFourCC, s.frames[0].image)
	} else {
		out = s.muxAnimation()
	}

	return s.io.StrictWrite(out)
}

func (s *saveState) muxAnimation() []byte {
	var vp8x [vp8xChunkSize]byte
	vp8x[0] |= 0x02 // ANIM flag
	for _, f := range s.frames {
		if f.alpha != nil {
			vp8x[0] |= 0x10 // ALPHA flag
		}
	}
	w, h := uint32(s.width-1), uint32(s.height-1)
	vp8x[4], vp8x[5], vp8x[6] = byte(w), byte(w>>8), byte(w>>16)
	vp8x[7], vp8x[8], vp8x[9] = byte(h), byte(h>>8), byte(h>>16)

	var anim [animChunkSize]byte // background: opaque black, loop forever
	anim[3] = 0xFF               // alpha byte of the BGRA-packed background word

	inner := writeChunk(nil, fourCCVP8X, vp8x[:])
	inner = writeChunk(inner, fourCCANIM, anim[:])

	for _, f := range s.frames {
		inner = append(inner, encodeANMF(s.width, s.height, f)...)
	}

	buf := make([]byte, 0, riffHeaderSize+len(inner))
	buf = append(buf, fourCCRIFF...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+len(inner)))
	buf = append(buf, size[:]...)
	buf = append(buf, fourCCWEBP...)
	buf = append(buf, inner...)
	return buf
}

// encodeANMF wraps one full-canvas frame as an ANMF chunk. Frames are
// always placed at (0,0) covering the whole canvas with no-blend/no-dispose,
// a deliberate scope cut: the encoder does not attempt libwebp's sub-frame
// diffing, only the canvas-composition semantics spec §4.6.5 requires of
// a decoder.
func encodeANMF(width, height int, f encodedFrame) []byte {
	var header [anmfChunkSize]byte
	// offsetX/offsetY already 0; width-1/height-1, duration 24-bit LE.
	w, h := uint32(width-1), uint32(height-1)
	header[6], header[7], header[8] = byte(w), byte(w>>8), byte(w>>16)
	header[9], header[10], header[11] = byte(h), byte(h>>8), byte(h>>16)
	d := uint32(f.durationMS)
	header[12], header[13], header[14] = byte(d), byte(d>>8), byte(d>>16)
	header[15] = 0x02 // no-blend; full-canvas frames never need blending

	payload := append([]byte(nil), header[:]...)
	if f.alpha != nil {
		payload = writeChunk(payload, fourCCALPH, f.alpha)
	}
	payload = writeChunk(payload, f.imageFourCC, f.image)

	return writeChunk(nil, fourCCANMF, payload)
}
