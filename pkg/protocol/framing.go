package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// DefaultMaxFrame is the longest accepted input line, excluding the delimiter.
const DefaultMaxFrame = 8192

// ErrFrameTooLong is returned for a line longer than the reader's limit.
// The offending line is discarded up to its delimiter; the stream stays usable.
var ErrFrameTooLong = errors.New("protocol: frame too long")

// FrameReader splits a byte stream on LF, dropping a trailing CR or NUL
// (telnet clients send CR LF or CR NUL).
type FrameReader struct {
	r   *bufio.Reader
	max int
}

// NewFrameReader wraps r. A non-positive max selects DefaultMaxFrame.
func NewFrameReader(r io.Reader, max int) *FrameReader {
	if max <= 0 {
		max = DefaultMaxFrame
	}
	return &FrameReader{r: bufio.NewReader(r), max: max}
}

// ReadFrame returns the next line without its delimiter. A final line
// without delimiter is returned before io.EOF.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	var frame []byte
	tooLong := false

	for {
		chunk, err := f.r.ReadSlice('\n')
		if !tooLong {
			frame = append(frame, chunk...)
			if len(trimEOL(frame)) > f.max {
				tooLong = true
				frame = nil
			}
		}

		switch {
		case err == nil:
			if tooLong {
				return nil, ErrFrameTooLong
			}
			return trimEOL(frame), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(frame) > 0 && !tooLong:
			return trimEOL(frame), nil
		default:
			return nil, err
		}
	}
}

func trimEOL(b []byte) []byte {
	return bytes.TrimRight(b, "\r\n\x00")
}
