// Package hdr implements the Radiance RGBE (.hdr/.pic) codec of spec
// section 4.6.1: RLE scanline read/write and the RGBE<->float32 sample
// conversion, grounded on original_source/src/sail-codecs/hdr/helpers.c.
package hdr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
	"github.com/mdouchement/rasterio/variant"
)

// pixelFormat is the only format helpers.c ever produces or accepts:
// 32-bit float RGB (96 bits total), per sail_codec_load_seek_next_frame_v8_hdr.
const pixelFormat = pixelformat.BPP96RGBFloat

// header mirrors struct hdr_header: the parsed textual preamble of a
// Radiance file plus the resolution line.
type header struct {
	width, height          int
	yIncreasing, xIncreasing bool
	exposure, gamma        float32
	software, view, primaries string
	colorcorr              [3]float32
}

func newHeader() header {
	return header{
		xIncreasing: true,
		exposure:    1,
		gamma:       1,
		colorcorr:   [3]float32{1, 1, 1},
	}
}

// readLine mirrors helpers.c's read_line: a tolerant byte-at-a-time scan
// stopping at '\n' and dropping '\r', since Radiance headers are plain
// text embedded before the binary scanline data.
func readLine(io iostream.Io, buf []byte) (string, error) {
	var b strings.Builder
	for {
		n, err := io.TolerantRead(buf[:1])
		if err != nil {
			return "", status.Wrap(status.ReadIO, "hdr: read line", err)
		}
		if n == 0 {
			break
		}
		if buf[0] == '\n' {
			break
		}
		if buf[0] != '\r' {
			b.WriteByte(buf[0])
		}
	}
	return b.String(), nil
}

func readHeader(io iostream.Io) (header, error) {
	h := newHeader()
	var buf [1]byte

	line, err := readLine(io, buf[:])
	if err != nil {
		return h, status.Wrap(status.ReadIO, "hdr: read signature", err)
	}
	if !strings.HasPrefix(line, "#?RADIANCE") && !strings.HasPrefix(line, "#?RGBE") {
		return h, status.Newf(status.InvalidImage, "hdr: invalid signature")
	}

	for {
		line, err = readLine(io, buf[:])
		if err != nil {
			return h, status.Wrap(status.ReadIO, "hdr: read header line", err)
		}
		if line == "" {
			break
		}

		switch {
		case strings.HasPrefix(line, "EXPOSURE="):
			v, _ := strconv.ParseFloat(strings.TrimSpace(line[9:]), 32)
			h.exposure = float32(v)
		case strings.HasPrefix(line, "GAMMA="):
			v, _ := strconv.ParseFloat(strings.TrimSpace(line[6:]), 32)
			h.gamma = float32(v)
		case strings.HasPrefix(line, "VIEW="):
			h.view = line[5:]
		case strings.HasPrefix(line, "PRIMARIES="):
			h.primaries = line[10:]
		case strings.HasPrefix(line, "COLORCORR="):
			fmt.Sscanf(line[10:], "%f %f %f", &h.colorcorr[0], &h.colorcorr[1], &h.colorcorr[2])
		case strings.HasPrefix(line, "# "):
			if h.software == "" {
				h.software = line[2:]
			}
		}
	}

	line, err = readLine(io, buf[:])
	if err != nil {
		return h, status.Wrap(status.ReadIO, "hdr: read resolution line", err)
	}

	var ySign, xSign, yAxis, xAxis byte
	var height, width int
	n, _ := fmt.Sscanf(line, "%c%c %d %c%c %d", &ySign, &yAxis, &height, &xSign, &xAxis, &width)
	if n != 6 || yAxis != 'Y' || xAxis != 'X' {
		return h, status.Newf(status.InvalidImage, "hdr: invalid resolution line %q", line)
	}
	if width <= 0 || height <= 0 {
		return h, status.New(status.InvalidImageDimensions)
	}

	h.width = width
	h.height = height
	h.yIncreasing = ySign == '+'
	h.xIncreasing = xSign == '+'

	return h, nil
}

func writeHeader(io iostream.Io, h header, software string) error {
	write := func(s string) error {
		if err := io.StrictWrite([]byte(s)); err != nil {
			return errors.Wrapf(err, "hdr: write %q", s)
		}
		return nil
	}

	if err := write("#?RADIANCE\n"); err != nil {
		return err
	}

	if software == "" {
		software = h.software
	}
	if software != "" {
		if err := write(fmt.Sprintf("# %s\n", software)); err != nil {
			return err
		}
	}

	if err := write("FORMAT=32-bit_rle_rgbe\n"); err != nil {
		return err
	}
	if h.exposure != 1 {
		if err := write(fmt.Sprintf("EXPOSURE=%20.10f\n", h.exposure)); err != nil {
			return err
		}
	}
	if h.gamma != 1 {
		if err := write(fmt.Sprintf("GAMMA=%f\n", h.gamma)); err != nil {
			return err
		}
	}
	if h.view != "" {
		if err := write(fmt.Sprintf("VIEW=%s\n", h.view)); err != nil {
			return err
		}
	}
	if h.primaries != "" {
		if err := write(fmt.Sprintf("PRIMARIES=%s\n", h.primaries)); err != nil {
			return err
		}
	}
	if h.colorcorr != [3]float32{1, 1, 1} {
		if err := write(fmt.Sprintf("COLORCORR=%f %f %f\n", h.colorcorr[0], h.colorcorr[1], h.colorcorr[2])); err != nil {
			return err
		}
	}
	if err := write("\n"); err != nil {
		return err
	}

	ySign, xSign := byte('-'), byte('+')
	if h.yIncreasing {
		ySign = '+'
	}
	if !h.xIncreasing {
		xSign = '-'
	}
	return write(fmt.Sprintf("%cY %d %cX %d\n", ySign, h.height, xSign, h.width))
}

// storeProperties mirrors hdr_private_store_properties: HDR-specific
// attributes survive a load/save round trip through Image.Properties
// (spec's SUPPLEMENTED FEATURES: HDR passthrough properties).
func storeProperties(h header) *variant.HashMap {
	hm := variant.NewHashMap()
	hm.Insert("hdr-exposure", variant.FromFloat(h.exposure))
	hm.Insert("hdr-gamma", variant.FromFloat(h.gamma))
	if h.view != "" {
		hm.Insert("hdr-view", variant.FromString(h.view))
	}
	if h.primaries != "" {
		hm.Insert("hdr-primaries", variant.FromString(h.primaries))
	}
	if h.colorcorr[0] != 1 {
		hm.Insert("hdr-colorcorr-1", variant.FromFloat(h.colorcorr[0]))
	}
	if h.colorcorr[1] != 1 {
		hm.Insert("hdr-colorcorr-2", variant.FromFloat(h.colorcorr[1]))
	}
	if h.colorcorr[2] != 1 {
		hm.Insert("hdr-colorcorr-3", variant.FromFloat(h.colorcorr[2]))
	}
	return hm
}

func fetchProperties(hm *variant.HashMap, h *header) {
	if hm == nil {
		return
	}
	if v, ok := hm.Lookup("hdr-exposure"); ok {
		if f, err := v.Float(); err == nil && f > 0 {
			h.exposure = f
		}
	}
	if v, ok := hm.Lookup("hdr-gamma"); ok {
		if f, err := v.Float(); err == nil && f > 0 {
			h.gamma = f
		}
	}
	if v, ok := hm.Lookup("hdr-view"); ok {
		if s, err := v.String(); err == nil {
			h.view = s
		}
	}
	if v, ok := hm.Lookup("hdr-primaries"); ok {
		if s, err := v.String(); err == nil {
			h.primaries = s
		}
	}
	if v, ok := hm.Lookup("hdr-colorcorr-1"); ok {
		if f, err := v.Float(); err == nil {
			h.colorcorr[0] = f
		}
	}
	if v, ok := hm.Lookup("hdr-colorcorr-2"); ok {
		if f, err := v.Float(); err == nil {
			h.colorcorr[1] = f
		}
	}
	if v, ok := hm.Lookup("hdr-colorcorr-3"); ok {
		if f, err := v.Float(); err == nil {
			h.colorcorr[2] = f
		}
	}
}

// applyTuning mirrors hdr_private_tuning_key_value_callback: SaveOptions'
// Tuning map can override RLE usage and axis directions before encoding.
func applyTuning(hm *variant.HashMap, h *header, useRLE *bool) {
	if hm == nil {
		return
	}
	hm.Each(func(key string, v *variant.Variant) {
		switch key {
		case "hdr-rle-compression":
			if b, err := v.Bool(); err == nil {
				*useRLE = b
			} else if i, err := v.Int(); err == nil {
				*useRLE = i != 0
			}
		case "hdr-y-direction":
			if s, err := v.String(); err == nil {
				h.yIncreasing = s == "increasing" || s == "+"
			}
		case "hdr-x-direction":
			if s, err := v.String(); err == nil {
				h.xIncreasing = s == "increasing" || s == "+"
			}
		case "hdr-exposure":
			if f, err := v.Float(); err == nil && f > 0 {
				h.exposure = f
			}
		case "hdr-gamma":
			if f, err := v.Float(); err == nil && f > 0 {
				h.gamma = f
			}
		}
	})
}

// imageFromHeader builds the skeleton Image load_seek_next_frame returns:
// always BPP96 (3x float32) per original_source's fixed pixel format.
func imageFromHeader(h header, wantSource bool) (*rimage.Image, error) {
	img, err := rimage.New(h.width, h.height, pixelFormat)
	if err != nil {
		return nil, err
	}
	if wantSource {
		img.Source = &rimage.SourceImage{
			PixelFormat: pixelFormat,
			Compression: "RLE",
		}
	}
	img.Properties = storeProperties(h)
	if h.software != "" {
		node := &rimage.MetaData{Key: rimage.MetaSoftware, Value: variant.FromString(h.software)}
		rimage.Append(&img.MetaDataHead, node)
	}
	return img, nil
}
