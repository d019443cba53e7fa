package server_test

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"nebula/client"
	"nebula/game"
	"nebula/protocol"
	"nebula/server"
)

func startServer(t *testing.T) (*server.Server, string) {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.Password = "p"
	cfg.ReadTimeout = 2 * time.Second
	srv := server.New(cfg, nil, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("serve did not stop")
		}
	})
	return srv, ln.Addr().String()
}

func TestPlayerSessionOverTCP(t *testing.T) {
	srv, addr := startServer(t)
	ctx := context.Background()
	c := client.New(addr, "p", "A")

	m, status, err := c.Map(ctx)
	if err != nil || status != protocol.StatusOK || m != nil {
		t.Fatalf("map before first tick: %v %s %v", m, status, err)
	}

	srv.Tick()
	if _, status, err := c.Join(ctx); err != nil || status != protocol.StatusOK {
		t.Fatalf("join: %s %v", status, err)
	}
	if _, status, _ := c.Join(ctx); status != protocol.StatusForbidden {
		t.Fatalf("second join: %s", status)
	}
	m, status, err = c.Switch(ctx, protocol.CharacterID(0))
	if err != nil || status != protocol.StatusOK || len(m.Characters) != 1 {
		t.Fatalf("switch: %s %v %+v", status, err, m)
	}
	if _, status, err := c.Control(ctx, game.Input{Dir: game.DirLeft}); err != nil || status != protocol.StatusOK {
		t.Fatalf("control: %s %v", status, err)
	}

	for i := 0; i < 4; i++ {
		srv.Tick()
	}
	m, _, err = c.Map(ctx)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	ci := m.Characters[0]
	if want := -4 * srv.MoveStep(); math.Abs(ci.Position.X-want) > 1e-9 || ci.Direction != game.DirLeft {
		t.Fatalf("expected x=%v facing left, got %+v", want, ci)
	}

	bad := client.New(addr, "wrong", "A")
	if _, status, _ := bad.Switch(ctx, nil); status != protocol.StatusUnauthorized {
		t.Fatalf("wrong password: %s", status)
	}
	if got := srv.Metrics().StatusCount(protocol.StatusOK); got != 5 {
		t.Fatalf("expected 5 OK answers, got %d", got)
	}
}

func TestSilentConnectionIsDropped(t *testing.T) {
	srv, addr := startServer(t)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	// the next client is still served
	c := client.New(addr, "p", "B")
	if _, status, err := c.Map(context.Background()); err != nil || status != protocol.StatusOK {
		t.Fatalf("map after a dropped connection: %s %v", status, err)
	}
	if srv.Metrics().Snapshot()["transport_errors"].(int64) != 1 {
		t.Fatalf("expected the empty connection counted as a transport error")
	}
}

func TestResponseHeaders(t *testing.T) {
	_, addr := startServer(t)
	c := client.New(addr, "p", "A")
	resp, err := c.Raw(context.Background(), "GET", "/", nil)
	if err != nil {
		t.Fatalf("raw: %v", err)
	}
	if resp.Status != protocol.StatusOK || resp.ContentType != protocol.ContentHTML || len(resp.Body) == 0 {
		t.Fatalf("unexpected answer %+v", resp)
	}
}
