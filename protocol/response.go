package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Response is a status with an optional body.
type Response struct {
	Status      Status
	ContentType string
	Body        []byte
}

// StatusResponse is an empty-bodied answer, used for every error.
func StatusResponse(s Status) Response {
	return Response{Status: s, ContentType: ContentJSON}
}

// Encode writes the status line, the Server, Date, Content-Length and
// Content-Type headers, a blank line and the body.
func (r Response) Encode(w io.Writer, server string, now time.Time) error {
	ct := r.ContentType
	if ct == "" {
		ct = ContentJSON
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "HTTP/1.1 %s\r\n", r.Status)
	fmt.Fprintf(&b, "Server: %s\r\n", server)
	fmt.Fprintf(&b, "Date: %s\r\n", now.UTC().Format(http.TimeFormat))
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	fmt.Fprintf(&b, "Content-Type: %s\r\n", ct)
	b.WriteString("\r\n")
	b.Write(r.Body)
	_, err := w.Write(b.Bytes())
	return err
}

// ReadResponse parses a response written by Encode.
func ReadResponse(r io.Reader) (Response, error) {
	var resp Response
	line, err := ReadLine(r)
	if err != nil {
		return resp, err
	}
	words := strings.Fields(line)
	if len(words) < 2 || !strings.HasPrefix(words[0], "HTTP/") {
		return resp, fmt.Errorf("%w: bad status line %q", ErrParse, line)
	}
	code, err := strconv.Atoi(words[1])
	if err != nil {
		return resp, fmt.Errorf("%w: bad status code %q", ErrParse, words[1])
	}
	status, ok := StatusFromCode(code)
	if !ok {
		return resp, fmt.Errorf("%w: unknown status code %d", ErrParse, code)
	}
	resp.Status = status

	length := 0
	for n := 0; ; n++ {
		line, err := ReadLine(r)
		if errors.Is(err, io.EOF) {
			return resp, io.ErrUnexpectedEOF
		}
		if err != nil {
			return resp, err
		}
		if line == "" {
			break
		}
		if n >= MaxHeaderLines {
			return resp, ErrTooManyHeaders
		}
		parseHeaderLine(line, &resp.ContentType, &length)
	}
	if length == 0 {
		return resp, nil
	}
	body, err := readExactly(r, length)
	if err != nil {
		return resp, err
	}
	resp.Body = body
	return resp, nil
}

// WriteRequest writes a request head and body the way ReadHeaders expects.
func WriteRequest(w io.Writer, method, path, contentType string, body []byte) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, path)
	if len(body) > 0 {
		fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("\r\n")
	b.Write(body)
	_, err := w.Write(b.Bytes())
	return err
}
