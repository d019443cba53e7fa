// Package client speaks the game protocol from the player side. Every call
// opens its own connection, sends one request and reads one answer.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"nebula/game"
	"nebula/protocol"
)

// Client identifies one player on one server.
type Client struct {
	Addr        string
	Password    string
	Name        string
	ContentType string        // protocol.ContentJSON when empty
	Timeout     time.Duration // per request, none when zero
}

// New returns a JSON client for name.
func New(addr, password, name string) *Client {
	return &Client{Addr: addr, Password: password, Name: name, ContentType: protocol.ContentJSON}
}

// Join registers the player.
func (c *Client) Join(ctx context.Context) (*game.Map, protocol.Status, error) {
	return c.do(ctx, "POST", "/map/", &protocol.JoinRequest{
		Password:   c.Password,
		PlayerName: c.Name,
	})
}

// Control replaces the player's pending input.
func (c *Client) Control(ctx context.Context, in game.Input) (*game.Map, protocol.Status, error) {
	return c.do(ctx, "PUT", "/map/", &protocol.ControlPacket{
		Password: c.Password,
		Player:   c.Name,
		Input:    in,
	})
}

// Switch asks for a character; nil gives up the current one.
func (c *Client) Switch(ctx context.Context, character *uint32) (*game.Map, protocol.Status, error) {
	return c.do(ctx, "PUT", "/character/", &protocol.CharacterSwitch{
		Password:   c.Password,
		PlayerName: c.Name,
		Character:  character,
	})
}

// Map fetches the world. The map is nil while the server has not ticked yet.
func (c *Client) Map(ctx context.Context) (*game.Map, protocol.Status, error) {
	return c.do(ctx, "GET", "/map/", nil)
}

// Raw sends an arbitrary request and returns the undecoded answer.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) (protocol.Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("dial %s: %w", c.Addr, err)
	}
	defer conn.Close()
	if deadline, ok := c.deadline(ctx); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := protocol.WriteRequest(conn, method, path, c.contentType(), body); err != nil {
		return protocol.Response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	resp, err := protocol.ReadResponse(bufio.NewReader(conn))
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*game.Map, protocol.Status, error) {
	var body []byte
	if payload != nil {
		b, err := protocol.Marshal(c.contentType(), payload)
		if err != nil {
			return nil, protocol.StatusParseError, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = b
	}
	resp, err := c.Raw(ctx, method, path, body)
	if err != nil {
		return nil, resp.Status, err
	}
	if resp.Status != protocol.StatusOK || len(resp.Body) == 0 {
		return nil, resp.Status, nil
	}
	var m game.Map
	if err := protocol.Unmarshal(resp.ContentType, resp.Body, &m); err != nil {
		return nil, resp.Status, fmt.Errorf("decode world: %w", err)
	}
	return &m, resp.Status, nil
}

func (c *Client) contentType() string {
	if c.ContentType == "" {
		return protocol.ContentJSON
	}
	return c.ContentType
}

func (c *Client) deadline(ctx context.Context) (time.Time, bool) {
	d, ok := ctx.Deadline()
	if c.Timeout > 0 {
		t := time.Now().Add(c.Timeout)
		if !ok || t.Before(d) {
			return t, true
		}
	}
	return d, ok
}
