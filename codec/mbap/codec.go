package mbap

import (
	"fmt"

	"github.com/claashk/modbusclient/comm/logging"
)

var log = logging.GetDefaultLogger()

// Request holds the parameters of one call. Start and Count address the
// registers, Payload carries the bytes to write.
type Request struct {
	Function    Function
	Start       uint16
	Count       uint16
	Payload     []byte
	Unit        uint8
	Transaction uint16
}

func (r *Request) String() string {
	return fmt.Sprintf("{ Function: %s, Start: %d, Count: %d, Unit: %d, Transaction: %d, Payload: %x }",
		r.Function, r.Start, r.Count, r.Unit, r.Transaction, r.Payload)
}

// NewRequest builds the frame for req: header, PDU and payload.
//
// Read requests take no payload, single register writes take exactly two
// bytes and multi register writes between 1 and 255 bytes. A zero Count on
// a multi register write is derived from the payload length.
func NewRequest(req Request) (*ApplicationProtocolHeader, []byte, error) {
	p, err := NewRequestPdu(req.Function)
	if err != nil {
		return nil, nil, err
	}
	n := len(req.Payload)
	switch pdu := p.(type) {
	case *ReadRequest:
		if n != 0 {
			return nil, nil, fmt.Errorf("%w: %s takes no payload", ErrInvalidPayload, req.Function)
		}
		pdu.Start, pdu.Count = req.Start, req.Count
	case *WriteRequest:
		if n == 0 || n > 0xFF {
			return nil, nil, fmt.Errorf("%w: %d bytes for %s", ErrInvalidPayload, n, req.Function)
		}
		pdu.Start, pdu.Count, pdu.Size = req.Start, req.Count, uint8(n)
		if pdu.Count == 0 {
			pdu.Count = uint16((n + 1) / 2)
		}
	case *SingleWriteRequest:
		if n != singleWriteSize {
			return nil, nil, fmt.Errorf("%w: %d bytes for %s", ErrInvalidPayload, n, req.Function)
		}
		pdu.Start = req.Start
	}

	length := 2 + p.Len() + n
	header := &ApplicationProtocolHeader{
		Transaction: req.Transaction,
		Protocol:    ProtocolID,
		Length:      uint16(length),
		Unit:        req.Unit,
		Function:    req.Function,
	}
	frame := make([]byte, 0, HeadLength-2+length)
	frame = append(frame, header.Encode()...)
	frame = append(frame, p.Encode()...)
	frame = append(frame, req.Payload...)
	log.Debugf("[%-9s] %s %s", "Request", header, p)
	return header, frame, nil
}

// ParseResponseHeader decodes the first HeadLength bytes of a response.
func ParseResponseHeader(frame []byte) (*ApplicationProtocolHeader, error) {
	header := &ApplicationProtocolHeader{}
	if err := header.Decode(frame); err != nil {
		return nil, err
	}
	if header.Protocol != ProtocolID {
		return nil, fmt.Errorf("%w: %d", ErrInvalidProtocol, header.Protocol)
	}
	if header.Length < 2 {
		return nil, fmt.Errorf("%w: length %d", ErrorPacket, header.Length)
	}
	return header, nil
}

// ParseResponseBody decodes the bytes following header. Protocol level
// outcomes are returned as ErrorCode, err is reserved for frames that
// cannot be decoded at all.
func ParseResponseBody(header *ApplicationProtocolHeader, body []byte) ([]byte, ErrorCode, error) {
	p, err := NewResponsePdu(header.Function)
	if err != nil {
		return nil, NoError, err
	}
	if err = p.Decode(body); err != nil {
		return nil, NoError, err
	}
	if e, ok := p.(*ErrorResponse); ok {
		if e.ExceptionCode == 0 {
			log.Warnf("[%-9s] %s carries exception code 0", "Response", header)
			return nil, InvalidExceptionCode, nil
		}
		return nil, ErrorCode(e.ExceptionCode), nil
	}
	payload := body[p.Len():]
	size, ok := p.PayloadSize()
	if ok && len(payload) != size {
		log.Warnf("[%-9s] %s announces %d payload bytes, got %d", "Response", header, size, len(payload))
		return payload, MessageSizeError, nil
	}
	return payload, NoError, nil
}
