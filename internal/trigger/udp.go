package trigger

import (
	"context"
	"errors"
	"net"
	"time"
)

// Serve reads datagrams from a UDP socket and feeds each payload through
// the gate. It returns when ctx is cancelled. This is the userspace stand-in
// for the packet-path hook: every datagram reaching the socket is gated,
// accepted ones have already been dispatched by the time Serve moves on.
func Serve(ctx context.Context, g *Gate, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	g.log.Info("trigger listening", "addr", conn.LocalAddr().String())

	buf := make([]byte, 2048)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(time.Minute)); err != nil {
			return err
		}
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			return err
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		if g.Process(payload) == VerdictAccept {
			g.log.Info("trigger accepted", "from", from.String())
		}
	}
}
