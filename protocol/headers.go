package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	MaxLineBytes   = 8 << 10
	MaxHeaderLines = 64
)

var (
	// ErrParse marks every framing or decoding failure that deserves a
	// PARSE ERROR answer.
	ErrParse = errors.New("parse error")
	// ErrNoBody is returned when a payload was expected but Content-Length is 0.
	ErrNoBody = fmt.Errorf("%w: missing body", ErrParse)

	ErrLineTooLong    = fmt.Errorf("%w: line too long", ErrParse)
	ErrTooManyHeaders = fmt.Errorf("%w: too many header lines", ErrParse)
	ErrBodyTooLarge   = fmt.Errorf("%w: body too large", ErrParse)
)

// Headers is what the server extracts from a request head. Unknown header
// lines are dropped.
type Headers struct {
	Method        string
	Path          string
	Proto         string // empty when the request line has no version
	ContentType   string // empty when absent
	ContentLength int
}

// ReadLine reads bytes one at a time up to '\n' so nothing past the line is
// consumed. A trailing '\r' is dropped. io.EOF means the stream ended before
// any byte; a partial line ends with io.ErrUnexpectedEOF.
func ReadLine(r io.Reader) (string, error) {
	var (
		line []byte
		buf  [1]byte
	)
	for {
		n, err := r.Read(buf[:])
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(string(line), "\r"), nil
			}
			if len(line) >= MaxLineBytes {
				return "", ErrLineTooLong
			}
			line = append(line, buf[0])
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
}

// ReadHeaders parses the request line and headers up to the blank line that
// separates them from the body. A missing method or path falls back to
// "GET" and "/".
func ReadHeaders(r io.Reader) (Headers, error) {
	h := Headers{Method: "GET", Path: "/"}

	first, err := ReadLine(r)
	if err != nil {
		return h, err
	}
	words := strings.Fields(first)
	if len(words) > 0 {
		h.Method = words[0]
	}
	if len(words) > 1 {
		h.Path = words[1]
	}
	if len(words) > 2 {
		h.Proto = words[2]
	}

	for n := 0; ; n++ {
		line, err := ReadLine(r)
		if errors.Is(err, io.EOF) {
			return h, io.ErrUnexpectedEOF
		}
		if err != nil {
			return h, err
		}
		if line == "" {
			return h, nil
		}
		if n >= MaxHeaderLines {
			return h, ErrTooManyHeaders
		}
		parseHeaderLine(line, &h.ContentType, &h.ContentLength)
	}
}

// parseHeaderLine extracts Content-Type and Content-Length, matching keys
// case-insensitively. A malformed length is ignored.
func parseHeaderLine(line string, contentType *string, contentLength *int) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch {
	case strings.EqualFold(strings.TrimSpace(key), "Content-Type"):
		*contentType = value
	case strings.EqualFold(strings.TrimSpace(key), "Content-Length"):
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			*contentLength = n
		}
	}
}

// ReadBody reads exactly ContentLength bytes. limit caps the accepted size;
// zero means unlimited.
func ReadBody(r io.Reader, h Headers, limit int) ([]byte, error) {
	if h.ContentLength == 0 {
		return nil, ErrNoBody
	}
	if limit > 0 && h.ContentLength > limit {
		return nil, ErrBodyTooLarge
	}
	return readExactly(r, h.ContentLength)
}

// readExactly reads n bytes, growing the buffer as data arrives so that an
// announced length alone never allocates more than what was actually sent.
func readExactly(r io.Reader, n int) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(min(n, 64<<10))
	if _, err := io.CopyN(&b, r, int64(n)); err != nil {
		return nil, fmt.Errorf("%w: short body: %v", ErrParse, err)
	}
	return b.Bytes(), nil
}

// Validator is implemented by payloads with required fields.
type Validator interface {
	Validate() error
}

// DecodeBody reads the body announced by h and decodes it into v using the
// request content type. Every failure wraps ErrParse.
func DecodeBody(r io.Reader, h Headers, limit int, v any) error {
	body, err := ReadBody(r, h, limit)
	if err != nil {
		return err
	}
	if err := Unmarshal(h.ContentType, body, v); err != nil {
		return err
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	return nil
}
