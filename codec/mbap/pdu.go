package mbap

import (
	"encoding/binary"
	"fmt"

	"github.com/claashk/modbusclient/codec"
)

// Pdu is the closed set of PDU layouts following the MBAP header.
type Pdu interface {
	codec.Pdu
	// PayloadSize is the payload length announced by the PDU, either in a
	// size field or implied by its layout. ok is false if it announces none.
	PayloadSize() (size int, ok bool)
	pdu()
}

type ReadRequest struct {
	Start uint16
	Count uint16
}

type WriteRequest struct {
	Start uint16
	Count uint16
	Size  uint8
}

// SingleWriteRequest is followed by exactly two payload bytes.
type SingleWriteRequest struct {
	Start uint16
}

type ReadResponse struct {
	Size uint8
}

type WriteResponse struct {
	Start uint16
	Count uint16
}

// SingleWriteResponse echoes the address and the two written bytes.
type SingleWriteResponse struct {
	Start uint16
}

type ErrorResponse struct {
	ExceptionCode uint8
}

const singleWriteSize = 2

func (p *ReadRequest) pdu()         {}
func (p *WriteRequest) pdu()        {}
func (p *SingleWriteRequest) pdu()  {}
func (p *ReadResponse) pdu()        {}
func (p *WriteResponse) pdu()       {}
func (p *SingleWriteResponse) pdu() {}
func (p *ErrorResponse) pdu()       {}

func (p *ReadRequest) Len() int         { return 4 }
func (p *WriteRequest) Len() int        { return 5 }
func (p *SingleWriteRequest) Len() int  { return 2 }
func (p *ReadResponse) Len() int        { return 1 }
func (p *WriteResponse) Len() int       { return 4 }
func (p *SingleWriteResponse) Len() int { return 2 }
func (p *ErrorResponse) Len() int       { return 1 }

func (p *ReadRequest) PayloadSize() (int, bool)         { return 0, false }
func (p *WriteRequest) PayloadSize() (int, bool)        { return int(p.Size), true }
func (p *SingleWriteRequest) PayloadSize() (int, bool)  { return singleWriteSize, true }
func (p *ReadResponse) PayloadSize() (int, bool)        { return int(p.Size), true }
func (p *WriteResponse) PayloadSize() (int, bool)       { return 0, false }
func (p *SingleWriteResponse) PayloadSize() (int, bool) { return singleWriteSize, true }
func (p *ErrorResponse) PayloadSize() (int, bool)       { return 0, false }

func (p *ReadRequest) Encode() []byte {
	frame := make([]byte, p.Len())
	binary.BigEndian.PutUint16(frame[0:2], p.Start)
	binary.BigEndian.PutUint16(frame[2:4], p.Count)
	return frame
}

func (p *ReadRequest) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Start = binary.BigEndian.Uint16(frame[0:2])
	p.Count = binary.BigEndian.Uint16(frame[2:4])
	return nil
}

func (p *ReadRequest) String() string {
	return fmt.Sprintf("{ Start: %d, Count: %d }", p.Start, p.Count)
}

func (p *WriteRequest) Encode() []byte {
	frame := make([]byte, p.Len())
	binary.BigEndian.PutUint16(frame[0:2], p.Start)
	binary.BigEndian.PutUint16(frame[2:4], p.Count)
	frame[4] = p.Size
	return frame
}

func (p *WriteRequest) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Start = binary.BigEndian.Uint16(frame[0:2])
	p.Count = binary.BigEndian.Uint16(frame[2:4])
	p.Size = frame[4]
	return nil
}

func (p *WriteRequest) String() string {
	return fmt.Sprintf("{ Start: %d, Count: %d, Size: %d }", p.Start, p.Count, p.Size)
}

func (p *SingleWriteRequest) Encode() []byte {
	frame := make([]byte, p.Len())
	binary.BigEndian.PutUint16(frame, p.Start)
	return frame
}

func (p *SingleWriteRequest) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Start = binary.BigEndian.Uint16(frame)
	return nil
}

func (p *SingleWriteRequest) String() string {
	return fmt.Sprintf("{ Start: %d }", p.Start)
}

func (p *ReadResponse) Encode() []byte {
	return []byte{p.Size}
}

func (p *ReadResponse) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Size = frame[0]
	return nil
}

func (p *ReadResponse) String() string {
	return fmt.Sprintf("{ Size: %d }", p.Size)
}

func (p *WriteResponse) Encode() []byte {
	frame := make([]byte, p.Len())
	binary.BigEndian.PutUint16(frame[0:2], p.Start)
	binary.BigEndian.PutUint16(frame[2:4], p.Count)
	return frame
}

func (p *WriteResponse) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Start = binary.BigEndian.Uint16(frame[0:2])
	p.Count = binary.BigEndian.Uint16(frame[2:4])
	return nil
}

func (p *WriteResponse) String() string {
	return fmt.Sprintf("{ Start: %d, Count: %d }", p.Start, p.Count)
}

func (p *SingleWriteResponse) Encode() []byte {
	frame := make([]byte, p.Len())
	binary.BigEndian.PutUint16(frame, p.Start)
	return frame
}

func (p *SingleWriteResponse) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.Start = binary.BigEndian.Uint16(frame)
	return nil
}

func (p *SingleWriteResponse) String() string {
	return fmt.Sprintf("{ Start: %d }", p.Start)
}

func (p *ErrorResponse) Encode() []byte {
	return []byte{p.ExceptionCode}
}

func (p *ErrorResponse) Decode(frame []byte) error {
	if len(frame) < p.Len() {
		return ErrorPacket
	}
	p.ExceptionCode = frame[0]
	return nil
}

func (p *ErrorResponse) String() string {
	return fmt.Sprintf("{ ExceptionCode: %d (%s) }", p.ExceptionCode, ErrorCode(p.ExceptionCode))
}

// NewRequestPdu returns an empty request PDU for f.
func NewRequestPdu(f Function) (Pdu, error) {
	switch f {
	case ReadCoils, ReadHoldingRegisters, ReadInputRegisters:
		return &ReadRequest{}, nil
	case WriteMultipleRegisters:
		return &WriteRequest{}, nil
	case WriteSingleRegister:
		return &SingleWriteRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFunction, f)
	}
}

// NewResponsePdu returns an empty response PDU for f, an ErrorResponse if
// f carries the error flag.
func NewResponsePdu(f Function) (Pdu, error) {
	if f.IsError() {
		return &ErrorResponse{}, nil
	}
	switch f {
	case ReadCoils, ReadHoldingRegisters, ReadInputRegisters:
		return &ReadResponse{}, nil
	case WriteMultipleRegisters:
		return &WriteResponse{}, nil
	case WriteSingleRegister:
		return &SingleWriteResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFunction, f)
	}
}
