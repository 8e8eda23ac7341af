package client

import (
	"context"
	"net"
)

// DialFunc opens the transport, net.Dialer.DialContext by default.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Option func(*options)

type options struct {
	dial DialFunc
}

func loadOptions(opts ...Option) *options {
	o := &options{dial: (&net.Dialer{}).DialContext}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithDialer(dial DialFunc) Option {
	return func(o *options) {
		if dial != nil {
			o.dial = dial
		}
	}
}
