package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"nebula/protocol"
)

// redirectPage is served on GET / so that a browser pointed at the game port
// lands on the project page.
const redirectPage = `<head><meta http-equiv="refresh" content="0; url=https://github.com/3ther-joyboy/Nebula" /></head>`

// ServeConn answers exactly one request and closes the connection.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()
	start := s.now()
	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(start.Add(s.cfg.ReadTimeout))
	}

	h, resp, err := s.handle(bufio.NewReader(conn))
	if err != nil {
		s.metrics.IncTransportError()
		if !errors.Is(err, io.EOF) {
			Log.Warnw("connection dropped", "remote", conn.RemoteAddr().String(), "err", err)
		}
		return
	}
	if err := resp.Encode(conn, s.cfg.ServerName, s.now()); err != nil {
		s.metrics.IncTransportError()
		Log.Warnw("write response", "remote", conn.RemoteAddr().String(), "err", err)
		return
	}
	s.metrics.IncStatus(resp.Status)
	Log.Debugw("request",
		"method", h.Method,
		"path", h.Path,
		"status", resp.Status.String(),
		"duration", time.Since(start))
}

// handle reads one request from r and computes its answer. A non-nil error
// means the stream broke before a request could be framed and nothing
// should be written back.
func (s *Server) handle(r io.Reader) (protocol.Headers, protocol.Response, error) {
	h, err := protocol.ReadHeaders(r)
	if err != nil {
		if errors.Is(err, protocol.ErrParse) {
			Log.Warnw("bad request head", "err", err)
			return h, protocol.StatusResponse(protocol.StatusParseError), nil
		}
		return h, protocol.Response{}, err
	}

	var resp protocol.Response
	switch {
	case h.Method == "GET" && h.Path == "/":
		resp = protocol.Response{Status: protocol.StatusOK, ContentType: protocol.ContentHTML, Body: []byte(redirectPage)}
	case h.Method == "GET" && h.Path == "/map/":
		resp = s.mapResponse(h.ContentType)
	case h.Method == "POST" && h.Path == "/map/":
		resp = s.answer(h, s.join(r, h))
	case h.Method == "PUT" && h.Path == "/map/":
		resp = s.answer(h, s.control(r, h))
	case h.Method == "PUT" && h.Path == "/character/":
		resp = s.answer(h, s.switchRequest(r, h))
	default:
		resp = protocol.StatusResponse(protocol.StatusNotFound)
	}
	return h, resp, nil
}

// answer turns the outcome of a mutating request into a response: the world
// on success, an empty status answer otherwise.
func (s *Server) answer(h protocol.Headers, err error) protocol.Response {
	if err != nil {
		status := statusOf(err)
		if status == protocol.StatusParseError || status == protocol.StatusServerError {
			Log.Warnw("request failed", "method", h.Method, "path", h.Path, "err", err)
		}
		return protocol.Response{Status: status, ContentType: protocol.ResponseType(h.ContentType)}
	}
	return s.mapResponse(h.ContentType)
}

// mapResponse encodes a copy of the world outside the world lock. Before the
// first tick the answer is an empty OK.
func (s *Server) mapResponse(requestType string) protocol.Response {
	ct := protocol.ResponseType(requestType)
	snap, ok := s.world.Snapshot()
	if !ok {
		return protocol.Response{Status: protocol.StatusOK, ContentType: ct}
	}
	body, err := protocol.Marshal(ct, snap)
	if err != nil {
		Log.Errorw("encode world", "err", err)
		return protocol.StatusResponse(protocol.StatusServerError)
	}
	return protocol.Response{Status: protocol.StatusOK, ContentType: ct, Body: body}
}

func (s *Server) join(r io.Reader, h protocol.Headers) error {
	var req protocol.JoinRequest
	if err := protocol.DecodeBody(r, h, s.cfg.MaxBodyBytes, &req); err != nil {
		return err
	}
	if !s.authorized(req.Password) {
		return ErrUnauthorized
	}
	p, err := s.roster.Join(req.PlayerName)
	if err != nil {
		return err
	}
	s.metrics.IncJoin()
	s.record(LedgerEvent{PlayerID: p.ID, PlayerName: p.Name, Kind: LedgerJoin})
	Log.Infow("player joined", "player", p.Name, "id", p.ID)
	return nil
}

func (s *Server) control(r io.Reader, h protocol.Headers) error {
	var req protocol.ControlPacket
	if err := protocol.DecodeBody(r, h, s.cfg.MaxBodyBytes, &req); err != nil {
		return err
	}
	if !s.authorized(req.Password) {
		return ErrUnauthorized
	}
	return s.roster.SubmitInput(req.Player, req.Input)
}

func (s *Server) switchRequest(r io.Reader, h protocol.Headers) error {
	var req protocol.CharacterSwitch
	if err := protocol.DecodeBody(r, h, s.cfg.MaxBodyBytes, &req); err != nil {
		return err
	}
	if !s.authorized(req.Password) {
		return ErrUnauthorized
	}
	return s.SwitchCharacter(req.PlayerName, req.Character)
}
