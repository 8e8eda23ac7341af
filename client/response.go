package client

import (
	"fmt"

	"github.com/claashk/modbusclient/codec/mbap"
)

// Response of one transaction. Code is NoError on success, Payload holds
// the bytes following the response PDU.
type Response struct {
	Header  *mbap.ApplicationProtocolHeader
	Payload []byte
	Code    mbap.ErrorCode
}

func (r *Response) Err() error {
	return r.Code.Err()
}

func (r *Response) String() string {
	return fmt.Sprintf("{ Header: %s, Payload: %x, Code: %s }", r.Header, r.Payload, r.Code)
}

func decodeResponse(header *mbap.ApplicationProtocolHeader, body []byte) (*Response, error) {
	payload, code, err := mbap.ParseResponseBody(header, body)
	if err != nil {
		return nil, err
	}
	return &Response{Header: header, Payload: payload, Code: code}, nil
}
