package sensor

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"coordmap-compositor/internal/frame"
)

// Recording file layout (little-endian):
//
//	header: magic "DMRC", version uint16, frame count uint32
//	frame:  time int64 (100ns ticks), depth [DepthPixels]uint16,
//	        color [ColorPixels*4]uint8 (BGRX), body index [DepthPixels]uint8
const (
	recordingMagic   = "DMRC"
	recordingVersion = 1
	headerSize       = 4 + 2 + 4
	frameSize        = 8 + frame.DepthPixels*2 + frame.ColorPixels*frame.BytesPerPixel + frame.DepthPixels
	tick             = 100 * time.Nanosecond
)

// ErrBadRecording reports a malformed recording file.
var ErrBadRecording = errors.New("sensor: bad recording")

// Writer appends frames to a recording. The frame count in the header is
// patched on Close.
type Writer struct {
	f     *os.File
	w     *bufio.Writer
	count uint32
}

// Create starts a new recording at path.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sensor: create %s: %w", path, err)
	}
	w := &Writer{f: f, w: bufio.NewWriterSize(f, 1<<20)}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	var hdr [headerSize]byte
	copy(hdr[:4], recordingMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], recordingVersion)
	binary.LittleEndian.PutUint32(hdr[6:10], w.count)
	_, err := w.w.Write(hdr[:])
	return err
}

// Write appends one frame.
func (w *Writer) Write(f frame.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("sensor: write: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, int64(f.Time/tick)); err != nil {
		return fmt.Errorf("sensor: write time: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, f.Depth.Pix); err != nil {
		return fmt.Errorf("sensor: write depth: %w", err)
	}
	if _, err := w.w.Write(f.Color.Pix); err != nil {
		return fmt.Errorf("sensor: write color: %w", err)
	}
	if _, err := w.w.Write(f.BodyIndex.Pix); err != nil {
		return fmt.Errorf("sensor: write body index: %w", err)
	}
	w.count++
	return nil
}

// Close flushes pending data and records the final frame count.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("sensor: flush: %w", err)
	}
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], w.count)
	if _, err := w.f.WriteAt(n[:], 6); err != nil {
		w.f.Close()
		return fmt.Errorf("sensor: patch header: %w", err)
	}
	return w.f.Close()
}

// Replay plays a recording back as a Source.
type Replay struct {
	f     *os.File
	r     *bufio.Reader
	total int
	read  int

	// pacing
	paced   bool
	now     func() time.Time
	started time.Time
	base    time.Duration
	pending *frame.Frame
}

// Open opens a recording for replay. When paced is true, Poll only hands
// out a frame once the wall clock has caught up with its capture time.
func Open(path string, paced bool) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sensor: open %s: %w", path, err)
	}
	r := bufio.NewReaderSize(f, 1<<20)

	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("sensor: %s: header: %w", path, ErrBadRecording)
	}
	if string(hdr[:4]) != recordingMagic {
		f.Close()
		return nil, fmt.Errorf("sensor: %s: magic %q: %w", path, hdr[:4], ErrBadRecording)
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != recordingVersion {
		f.Close()
		return nil, fmt.Errorf("sensor: %s: version %d: %w", path, v, ErrBadRecording)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sensor: stat %s: %w", path, err)
	}
	total := int64(binary.LittleEndian.Uint32(hdr[6:10]))
	if fit := (info.Size() - headerSize) / frameSize; total > fit {
		f.Close()
		return nil, fmt.Errorf("sensor: %s: header claims %d frames, file holds %d: %w",
			path, total, fit, ErrBadRecording)
	}

	return &Replay{
		f:     f,
		r:     r,
		total: int(total),
		paced: paced,
		now:   time.Now,
	}, nil
}

// Len returns the number of frames in the recording.
func (p *Replay) Len() int { return p.total }

// Close releases the underlying file.
func (p *Replay) Close() error { return p.f.Close() }

// Poll implements Source.
func (p *Replay) Poll() (frame.Frame, bool, error) {
	if p.pending == nil {
		f, err := p.next()
		if err != nil {
			return frame.Frame{}, false, err
		}
		p.pending = &f
	}

	if p.paced {
		now := p.now()
		if p.started.IsZero() {
			p.started = now
			p.base = p.pending.Time
		}
		if now.Sub(p.started) < p.pending.Time-p.base {
			return frame.Frame{}, false, nil
		}
	}

	f := *p.pending
	p.pending = nil
	return f, true, nil
}

func (p *Replay) next() (frame.Frame, error) {
	if p.read >= p.total {
		return frame.Frame{}, io.EOF
	}

	f := frame.New()
	var ticks int64
	if err := binary.Read(p.r, binary.LittleEndian, &ticks); err != nil {
		return frame.Frame{}, p.truncated(err)
	}
	if err := binary.Read(p.r, binary.LittleEndian, f.Depth.Pix); err != nil {
		return frame.Frame{}, p.truncated(err)
	}
	if _, err := io.ReadFull(p.r, f.Color.Pix); err != nil {
		return frame.Frame{}, p.truncated(err)
	}
	if _, err := io.ReadFull(p.r, f.BodyIndex.Pix); err != nil {
		return frame.Frame{}, p.truncated(err)
	}
	f.Time = time.Duration(ticks) * tick
	p.read++
	return f, nil
}

func (p *Replay) truncated(err error) error {
	return fmt.Errorf("sensor: frame %d of %d: %v: %w", p.read, p.total, err, ErrBadRecording)
}
