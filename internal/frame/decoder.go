package frame

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const headerPrefix = "Content-Length: "

// headerTerminator ends the header block: the CRLF closing the length line
// plus the blank line separating headers from the body.
const headerTerminator = "\r\n\r\n"

// maxContentLength bounds a declared body size so a corrupt header cannot
// demand an absurd allocation.
const maxContentLength = 1 << 30

// ErrBodyNotUTF8 indicates a message body that is not valid UTF-8.
var ErrBodyNotUTF8 = errors.New("frame body is not valid utf-8")

// MalformedHeaderError reports a header that does not match the framing
// grammar, carrying the offending bytes for diagnostics.
type MalformedHeaderError struct {
	// Offending is a bounded snippet of input starting at the first byte
	// that failed to match.
	Offending []byte
}

// Error implements the error interface.
func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed frame header: unexpected input %q", e.Offending)
}

type parseState int

const (
	// stateSeparator skips blank lines before the header.
	stateSeparator parseState = iota

	// statePrefix matches "Content-Length: ".
	statePrefix

	// stateLength accumulates the decimal length digits.
	stateLength

	// stateTerminator matches the CRLF CRLF ending the header block.
	stateTerminator

	// stateBody collects the declared number of body bytes.
	stateBody

	// stateFailed is terminal; the stream is corrupt.
	stateFailed
)

// Decoder incrementally extracts Content-Length framed messages from a byte
// stream. It keeps its position in the framing grammar across calls, so
// input may arrive in fragments of any size without re-parsing.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	state   parseState
	prefixN int    // bytes of headerPrefix matched so far
	length  int    // declared content length once digits have been seen
	digits  int    // number of length digits consumed
	termN   int    // bytes of headerTerminator matched so far
	body    []byte // body bytes accumulated so far
	err     error
}

// NewDecoder creates a Decoder positioned at the start of a stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode attempts to extract the next complete message from buf.
//
// It returns the message and ok=true on a full match, with consumed equal to
// the matched header and body bytes. When the buffered input is only a
// prefix of a message it returns ok=false with consumed covering the bytes
// already attributed to the frame; the caller must drop exactly consumed
// bytes and retry with more input. Call Decode in a loop to drain a buffer
// holding several messages.
//
// A grammar violation returns a *MalformedHeaderError (or ErrBodyNotUTF8)
// and poisons the decoder: every later call reports the same error.
func (d *Decoder) Decode(buf []byte) (msg string, ok bool, consumed int, err error) {
	if d.state == stateFailed {
		return "", false, 0, d.err
	}

	pos := 0
	for {
		switch d.state {
		case stateSeparator:
			if pos == len(buf) {
				// Stay here: the next fragment may open with
				// more separator lines.
				return "", false, pos, nil
			}
			if len(buf)-pos >= 2 && buf[pos] == '\r' && buf[pos+1] == '\n' {
				pos += 2
				continue
			}
			if len(buf)-pos == 1 && buf[pos] == '\r' {
				// Could be the start of another separator; wait
				// for the next byte before deciding.
				return "", false, pos, nil
			}
			d.state = statePrefix

		case statePrefix:
			for pos < len(buf) && d.prefixN < len(headerPrefix) {
				if buf[pos] != headerPrefix[d.prefixN] {
					return d.fail(buf, pos)
				}
				pos++
				d.prefixN++
			}
			if d.prefixN < len(headerPrefix) {
				return "", false, pos, nil
			}
			d.state = stateLength

		case stateLength:
			for pos < len(buf) {
				c := buf[pos]
				if c < '0' || c > '9' {
					break
				}
				d.length = d.length*10 + int(c-'0')
				if d.length > maxContentLength {
					return d.fail(buf, pos)
				}
				pos++
				d.digits++
			}
			if pos == len(buf) {
				// More digits may follow.
				return "", false, pos, nil
			}
			if d.digits == 0 {
				return d.fail(buf, pos)
			}
			d.state = stateTerminator

		case stateTerminator:
			for pos < len(buf) && d.termN < len(headerTerminator) {
				if buf[pos] != headerTerminator[d.termN] {
					return d.fail(buf, pos)
				}
				pos++
				d.termN++
			}
			if d.termN < len(headerTerminator) {
				return "", false, pos, nil
			}
			d.state = stateBody

		case stateBody:
			take := d.length - len(d.body)
			if avail := len(buf) - pos; avail < take {
				take = avail
			}
			d.body = append(d.body, buf[pos:pos+take]...)
			pos += take
			if len(d.body) < d.length {
				return "", false, pos, nil
			}
			if !utf8.Valid(d.body) {
				d.state = stateFailed
				d.err = ErrBodyNotUTF8
				return "", false, pos, d.err
			}
			msg := string(d.body)
			d.reset()
			return msg, true, pos, nil
		}
	}
}

// fail poisons the decoder and reports the bytes that broke the grammar.
func (d *Decoder) fail(buf []byte, pos int) (string, bool, int, error) {
	offending := buf[pos:]
	if len(offending) > 32 {
		offending = offending[:32]
	}
	d.state = stateFailed
	d.err = &MalformedHeaderError{Offending: append([]byte(nil), offending...)}
	return "", false, pos, d.err
}

// reset prepares for the next message. Failure state is never reset.
func (d *Decoder) reset() {
	d.state = stateSeparator
	d.prefixN = 0
	d.length = 0
	d.digits = 0
	d.termN = 0
	d.body = nil
}
