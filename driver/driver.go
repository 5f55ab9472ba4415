// Package driver implements the Load/Save driver of spec section 4.3: it
// drives the uniform codec ABI (codec.Codec) through init -> seek-next-frame
// -> frame -> finish, hiding state-machine bookkeeping behind LoadSession
// and SaveSession, the way the teacher's top-level Decode/DecodeConfig
// (reader.go) hide its own strip/tile iteration loop behind two functions.
package driver

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// LoadSession is a lazy, finite, non-restartable sequence of frames (spec
// section 9, "coroutine-like control flow"). NextFrame is idempotent once
// exhausted: calling it again after NoMoreFrames keeps returning
// NoMoreFrames rather than panicking or restarting.
type LoadSession struct {
	state     codec.LoadState
	codecInfo *codec.Info
	done      bool
	doneErr   error
	finished  bool
}

// StartLoading begins a load session on io, probing the codec via magic
// signature when c is nil (spec section 4.3).
func StartLoading(reg *codec.Registry, io iostream.Io, c codec.Codec, opts *codec.LoadOptions) (*LoadSession, error) {
	if c == nil {
		found, err := reg.FromMagic(io)
		if err != nil {
			return nil, err
		}
		c = found
	}
	if opts == nil {
		opts = codec.DefaultLoadOptions()
	}
	state, err := c.LoadInit(io, opts)
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "load_init", err)
	}
	return &LoadSession{state: state, codecInfo: c.Info()}, nil
}

// CodecInfo reports which codec this session resolved to.
func (s *LoadSession) CodecInfo() *codec.Info { return s.codecInfo }

// NextFrame advances to and decodes the next frame. It returns
// (nil, status.NoMoreFrames-wrapped error) once the sequence is exhausted;
// subsequent calls keep returning the same thing (idempotent, spec section
// 9). The driver allocates the pixel buffer between seek_next_frame and
// frame, per spec section 4.3's ownership rule.
func (s *LoadSession) NextFrame() (*rimage.Image, error) {
	if s.done {
		return nil, s.doneErr
	}

	skeleton, err := s.state.SeekNextFrame()
	if err != nil {
		if status.Is(err, status.NoMoreFrames) {
			s.done = true
			s.doneErr = err
		}
		return nil, err
	}

	if err := skeleton.Validate(); err != nil {
		return nil, err
	}

	skeleton.AllocatePixels()
	if err := s.state.Frame(skeleton); err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "load_frame", err)
	}
	return skeleton, nil
}

// Finish releases the codec state. Guaranteed to run exactly once even if
// called multiple times, matching the spec's scoped-acquisition discipline
// (section 5/9) without needing a macro system: Go's defer is the native
// equivalent.
func (s *LoadSession) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	return s.state.Finish()
}

// Probe reads only the skeleton of the first frame (no pixel allocation),
// the driver's metadata-only entry point (spec section 4.3).
func Probe(reg *codec.Registry, io iostream.Io, c codec.Codec, opts *codec.LoadOptions) (*rimage.Image, *codec.Info, error) {
	sess, err := StartLoading(reg, io, c, opts)
	if err != nil {
		return nil, nil, err
	}
	defer sess.Finish()

	skeleton, err := sess.state.SeekNextFrame()
	if err != nil {
		return nil, nil, err
	}
	return skeleton, sess.codecInfo, nil
}

// Load is the single-frame convenience entry point: init, one
// seek_next_frame, one frame, finish (spec section 4.3).
func Load(reg *codec.Registry, io iostream.Io, c codec.Codec, opts *codec.LoadOptions) (img *rimage.Image, err error) {
	sess, err := StartLoading(reg, io, c, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := sess.Finish(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	return sess.NextFrame()
}

// SaveSession drives the symmetric encode-side state machine.
type SaveSession struct {
	state    codec.SaveState
	finished bool
}

// StartSaving begins a save session on io using codec c.
func StartSaving(c codec.Codec, io iostream.Io, opts *codec.SaveOptions) (*SaveSession, error) {
	if opts == nil {
		opts = codec.DefaultSaveOptions()
	}
	state, err := c.SaveInit(io, opts)
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "save_init", err)
	}
	return &SaveSession{state: state}, nil
}

// NextFrame encodes img as the next frame.
func (s *SaveSession) NextFrame(img *rimage.Image) error {
	if err := s.state.SeekNextFrame(img); err != nil {
		return status.Wrap(status.UnderlyingCodec, "save_seek_next_frame", err)
	}
	if err := s.state.Frame(img); err != nil {
		return status.Wrap(status.UnderlyingCodec, "save_frame", err)
	}
	return nil
}

// Finish releases the codec state, idempotent like LoadSession.Finish.
func (s *SaveSession) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	return s.state.Finish()
}

// Save is the single-frame convenience entry point for encoding.
func Save(c codec.Codec, io iostream.Io, img *rimage.Image, opts *codec.SaveOptions) (err error) {
	sess, err := StartSaving(c, io, opts)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := sess.Finish(); ferr != nil && err == nil {
			err = ferr
		}
	}()
	return sess.NextFrame(img)
}
