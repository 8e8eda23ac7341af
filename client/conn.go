package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/claashk/modbusclient/codec/mbap"
	"github.com/claashk/modbusclient/comm"
	"github.com/claashk/modbusclient/comm/logging"
)

// State of a client connection.
type State uint32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

var aLongTimeAgo = time.Unix(1, 0)

func dial(ctx context.Context, d DialFunc, cfg *Config) (net.Conn, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return d(ctx, "tcp", cfg.Address())
}

// closeConn half-closes before closing, so the peer sees an orderly EOF.
func closeConn(c net.Conn) error {
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	return c.Close()
}

// readFrame reads one complete frame: the header, then exactly the number
// of bytes its length field announces.
func readFrame(r io.Reader) (*mbap.ApplicationProtocolHeader, []byte, error) {
	head := make([]byte, mbap.HeadLength)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, nil, aborted(err)
	}
	header, err := mbap.ParseResponseHeader(head)
	if err != nil {
		comm.LogHex(logging.WarnLevel, "Header", head)
		return nil, nil, err
	}
	body := make([]byte, header.BodyLength())
	if _, err = io.ReadFull(r, body); err != nil {
		return header, nil, aborted(err)
	}
	comm.LogHex(logging.DebugLevel, "Response", append(head, body...))
	return header, body, nil
}

func aborted(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrConnectionAborted, err)
	}
	return err
}

// watchContext interrupts pending I/O on conn once ctx ends. The returned
// func stops watching and clears the deadline again.
func watchContext(ctx context.Context, conn net.Conn) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = conn.SetDeadline(aLongTimeAgo)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
		_ = conn.SetDeadline(time.Time{})
	}
}

func unitMatches(requested, received uint8) bool {
	return received == mbap.NoUnit || received == requested
}
