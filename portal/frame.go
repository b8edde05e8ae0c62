package portal

import (
	"bytes"
	"errors"
	"strings"
)

// MaxFrameBytes caps how much request text a single connection may
// accumulate. Overflow follows the malformed-request path: the connection
// is closed without a response.
const MaxFrameBytes = 16 * 1024

var ErrFrameOverflow = errors.New("request frame over size cap")

// RequestFrame accumulates the raw text of one client request. The header
// block ends at the first blank line, detected with a flag tracking whether
// the current line still has no content; a lone "\r\n" terminates it.
//
// The frame deliberately keeps the whole raw text, headers included: field
// extraction scans all of it, not an isolated body (see Handler).
type RequestFrame struct {
	buf        bytes.Buffer
	lineEmpty  bool
	headerDone bool
}

func NewFrame() *RequestFrame {
	return &RequestFrame{lineEmpty: true}
}

// Append adds one byte and reports whether the header block just
// completed.
func (f *RequestFrame) Append(b byte) (bool, error) {
	if f.buf.Len() >= MaxFrameBytes {
		return false, ErrFrameOverflow
	}
	f.buf.WriteByte(b)
	switch b {
	case '\n':
		if f.lineEmpty {
			f.headerDone = true
			return true, nil
		}
		f.lineEmpty = true
	case '\r':
		// a carriage return alone does not put content on the line
	default:
		f.lineEmpty = false
	}
	return f.headerDone, nil
}

// AppendBody adds post-header bytes (the form body), still under the size
// cap.
func (f *RequestFrame) AppendBody(p []byte) error {
	if f.buf.Len()+len(p) > MaxFrameBytes {
		return ErrFrameOverflow
	}
	f.buf.Write(p)
	return nil
}

// Text returns everything accumulated so far.
func (f *RequestFrame) Text() string {
	return f.buf.String()
}

// FirstLine returns the request line, without its terminator.
func (f *RequestFrame) FirstLine() string {
	text := f.buf.String()
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, "\r")
}

// HeaderDone reports whether the blank line ending the headers was seen.
func (f *RequestFrame) HeaderDone() bool {
	return f.headerDone
}
