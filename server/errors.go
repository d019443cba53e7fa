package server

import (
	"errors"

	"nebula/protocol"
)

var (
	ErrUnauthorized     = errors.New("wrong server password")
	ErrNameTaken        = errors.New("player name already registered")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInstanceNotFound = errors.New("instance not found")
	ErrWorldNotReady    = errors.New("world not initialised")
	ErrUnknownCharacter = errors.New("unknown character definition")
	// ErrStateChanged means a player or instance vanished between two
	// critical sections of the same request.
	ErrStateChanged = errors.New("state changed concurrently")
)

// statusOf maps an error to the answer the client gets.
func statusOf(err error) protocol.Status {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, protocol.ErrParse):
		return protocol.StatusParseError
	case errors.Is(err, ErrUnauthorized):
		return protocol.StatusUnauthorized
	case errors.Is(err, ErrNameTaken):
		return protocol.StatusForbidden
	case errors.Is(err, ErrStateChanged):
		return protocol.StatusServerError
	case errors.Is(err, ErrPlayerNotFound), errors.Is(err, ErrUnknownCharacter):
		return protocol.StatusNotFound
	case errors.Is(err, ErrWorldNotReady):
		return protocol.StatusNotImplemented
	default:
		return protocol.StatusServerError
	}
}
