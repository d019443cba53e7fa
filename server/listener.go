package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ListenAndServe opens Config.Addr and runs Serve on it.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections one at a time and answers each before accepting
// the next. It returns nil once ctx is cancelled and the in-flight
// connection, if any, is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
	}()

	Log.Infof("game server listening on %s", ln.Addr())
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				Log.Infof("game server on %s stopped", ln.Addr())
				return nil
			}
			// same retry policy as net/http for EMFILE and friends
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			Log.Warnf("accept: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.ServeConn(conn)
	}
}
