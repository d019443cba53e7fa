package protocol

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentJSON    = "application/json"
	ContentMsgpack = "application/msgpack"
	ContentHTML    = "text/html"
)

// IsMsgpack reports whether a content type selects the MessagePack encoding.
// Anything else, including an absent content type, means JSON.
func IsMsgpack(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		media = strings.ToLower(strings.TrimSpace(contentType))
	}
	return media == ContentMsgpack || media == "application/x-msgpack"
}

// ResponseType picks the content type a response is written in, mirroring
// the request encoding.
func ResponseType(requestType string) string {
	if IsMsgpack(requestType) {
		return ContentMsgpack
	}
	return ContentJSON
}

// Marshal encodes v in the encoding selected by contentType.
func Marshal(contentType string, v any) ([]byte, error) {
	if IsMsgpack(contentType) {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

// Unmarshal decodes raw in the encoding selected by contentType. Any failure
// is reported as ErrParse.
func Unmarshal(contentType string, raw []byte, v any) error {
	var err error
	if IsMsgpack(contentType) {
		err = msgpack.Unmarshal(raw, v)
	} else {
		err = json.Unmarshal(raw, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
