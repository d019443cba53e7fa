package server

import (
	"bytes"
	"testing"

	"nebula/game"
	"nebula/protocol"
)

const testPassword = "p"

func testCatalog() game.Catalog {
	second := game.DefaultCharacter()
	second.ID = 1
	second.Name = "second"
	return game.Catalog{0: game.DefaultCharacter(), 1: second}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Password = testPassword
	return New(cfg, testCatalog(), nil)
}

// send runs one request through the handler without a socket.
func send(t *testing.T, s *Server, method, path, contentType string, payload any) protocol.Response {
	t.Helper()
	var body []byte
	if payload != nil {
		b, err := protocol.Marshal(contentType, payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = b
	}
	var buf bytes.Buffer
	if err := protocol.WriteRequest(&buf, method, path, contentType, body); err != nil {
		t.Fatalf("write request: %v", err)
	}
	return sendRaw(t, s, buf.String())
}

func sendRaw(t *testing.T, s *Server, raw string) protocol.Response {
	t.Helper()
	_, resp, err := s.handle(bytes.NewBufferString(raw))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	return resp
}

func join(t *testing.T, s *Server, name string) protocol.Response {
	t.Helper()
	return send(t, s, "POST", "/map/", protocol.ContentJSON, protocol.JoinRequest{Password: testPassword, PlayerName: name})
}

func control(t *testing.T, s *Server, name string, in game.Input) protocol.Response {
	t.Helper()
	return send(t, s, "PUT", "/map/", protocol.ContentJSON, protocol.ControlPacket{Password: testPassword, Player: name, Input: in})
}

func switchTo(t *testing.T, s *Server, name string, character *uint32) protocol.Response {
	t.Helper()
	return send(t, s, "PUT", "/character/", protocol.ContentJSON, protocol.CharacterSwitch{Password: testPassword, PlayerName: name, Character: character})
}

func decodeMap(t *testing.T, resp protocol.Response) *game.Map {
	t.Helper()
	if resp.Status != protocol.StatusOK {
		t.Fatalf("expected OK, got %s", resp.Status)
	}
	if len(resp.Body) == 0 {
		t.Fatalf("expected a world in the body")
	}
	var m game.Map
	if err := protocol.Unmarshal(resp.ContentType, resp.Body, &m); err != nil {
		t.Fatalf("decode world: %v", err)
	}
	return &m
}

func expectStatus(t *testing.T, resp protocol.Response, want protocol.Status) {
	t.Helper()
	if resp.Status != want {
		t.Fatalf("expected %s, got %s", want, resp.Status)
	}
}
