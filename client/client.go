package client

import (
	"context"
	"net"

	"github.com/claashk/modbusclient/codec/mbap"
	"github.com/claashk/modbusclient/comm"
	"github.com/claashk/modbusclient/comm/logging"
)

// Client is a blocking Modbus TCP client: each Call writes one request and
// reads the next frame as its response.
//
// A Client is not safe for concurrent use. Callers sharing a connection
// should use a MuxClient.
type Client struct {
	cfg  Config
	opts *options
	conn net.Conn
}

func NewClient(cfg Config, opts ...Option) *Client {
	return &Client{cfg: cfg, opts: loadOptions(opts...)}
}

// Connect dials the configured address, closing any open connection first.
func (c *Client) Connect(ctx context.Context) error {
	_ = c.Disconnect()
	conn, err := dial(ctx, c.opts.dial, &c.cfg)
	if err != nil {
		log.Errorf("[%-9s] %s: %v", "Connect", c.cfg.Address(), err)
		return err
	}
	c.conn = conn
	log.Infof("[%-9s] connected to %s", "Connect", c.cfg.Address())
	return nil
}

// Disconnect closes the connection. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := closeConn(c.conn)
	c.conn = nil
	log.Infof("[%-9s] disconnected from %s", "Close", c.cfg.Address())
	return err
}

func (c *Client) IsConnected() bool {
	return c.conn != nil
}

func (c *Client) State() State {
	if c.conn == nil {
		return Disconnected
	}
	return Connected
}

// Request encodes and writes req without waiting for the response.
func (c *Client) Request(req mbap.Request) (*mbap.ApplicationProtocolHeader, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	header, frame, err := mbap.NewRequest(req)
	if err != nil {
		return nil, err
	}
	comm.LogHex(logging.DebugLevel, "Request", frame)
	if _, err = c.conn.Write(frame); err != nil {
		log.Errorf("[%-9s] %s: %v", "Request", c.cfg.Address(), err)
		_ = c.Disconnect()
		return nil, err
	}
	return header, nil
}

// ReceiveResponse reads the next frame. Transport and framing errors close
// the connection.
func (c *Client) ReceiveResponse() (*Response, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	header, body, err := readFrame(c.conn)
	if err != nil {
		log.Errorf("[%-9s] %s: %v", "Receive", c.cfg.Address(), err)
		_ = c.Disconnect()
		return nil, err
	}
	return decodeResponse(header, body)
}

// IterResponses reads n responses to previously written requests in the
// order they arrive.
func (c *Client) IterResponses(n int) ([]*Response, error) {
	responses := make([]*Response, 0, n)
	for i := 0; i < n; i++ {
		resp, err := c.ReceiveResponse()
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Call writes req and waits for its response. The response is validated
// against the request: a different transaction id yields
// InvalidTransactionId, a different unit other than NoUnit yields
// UnitMismatch, which wins when both differ. Any Code other than NoError is also returned as a
// *mbap.ModbusError.
//
// When ctx ends before the response arrives the connection is closed, since
// a late response would otherwise be read by the next Call.
func (c *Client) Call(ctx context.Context, req mbap.Request) (*Response, error) {
	conn := c.conn
	if conn == nil {
		return nil, ErrNotConnected
	}
	release := watchContext(ctx, conn)
	header, err := c.Request(req)
	var resp *Response
	if err == nil {
		resp, err = c.ReceiveResponse()
	}
	release()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if resp.Header.Transaction != header.Transaction {
		log.Warnf("[%-9s] expected transaction %d, got %d", "Call", header.Transaction, resp.Header.Transaction)
		resp.Code = mbap.InvalidTransactionId
	}
	if !unitMatches(header.Unit, resp.Header.Unit) {
		log.Warnf("[%-9s] expected unit %d, got %d", "Call", header.Unit, resp.Header.Unit)
		resp.Code = mbap.UnitMismatch
	}
	return resp, resp.Err()
}
