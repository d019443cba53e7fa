package protocol

import "strconv"

// Status is the outcome of a request. The reason strings are part of the wire
// format and must not change.
type Status int

const (
	StatusOK Status = iota
	StatusParseError
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusServerError
	StatusNotImplemented
)

var statusLines = map[Status]struct {
	code   int
	reason string
}{
	StatusOK:             {200, "OK"},
	StatusParseError:     {400, "PARSE ERROR"},
	StatusUnauthorized:   {401, "UNAUTHORIZED"},
	StatusForbidden:      {403, "FORBIDEN ERROR"},
	StatusNotFound:       {404, "NOT FOUND"},
	StatusServerError:    {500, "SERVER ERROR"},
	StatusNotImplemented: {501, "NOT IMPLEMENTED"},
}

func (s Status) Code() int {
	if l, ok := statusLines[s]; ok {
		return l.code
	}
	return 500
}

func (s Status) Reason() string {
	if l, ok := statusLines[s]; ok {
		return l.reason
	}
	return statusLines[StatusServerError].reason
}

// String renders "<code> <reason>", e.g. "403 FORBIDEN ERROR".
func (s Status) String() string {
	return strconv.Itoa(s.Code()) + " " + s.Reason()
}

// StatusFromCode maps a numeric code back to a Status.
func StatusFromCode(code int) (Status, bool) {
	for s, l := range statusLines {
		if l.code == code {
			return s, true
		}
	}
	return StatusServerError, false
}
