package mbap

import (
	"encoding/binary"
	"fmt"

	"github.com/claashk/modbusclient/codec"
)

var _ codec.IHead = (*ApplicationProtocolHeader)(nil)

const (
	HeadLength  = 8    // MBAP header including unit and function byte
	ProtocolID  = 0    // the only protocol id Modbus TCP knows
	NoUnit      = 0xFF // no specific unit addressed
	DefaultPort = 502
)

// ApplicationProtocolHeader is the MBAP header. The function code, strictly
// part of the PDU, is kept here so that every PDU starts after byte 8.
// Length counts unit and function byte plus PDU and payload.
type ApplicationProtocolHeader struct {
	Transaction uint16
	Protocol    uint16
	Length      uint16
	Unit        uint8
	Function    Function
}

func (header *ApplicationProtocolHeader) Encode() []byte {
	frame := make([]byte, HeadLength)
	binary.BigEndian.PutUint16(frame[0:2], header.Transaction)
	binary.BigEndian.PutUint16(frame[2:4], header.Protocol)
	binary.BigEndian.PutUint16(frame[4:6], header.Length)
	frame[6] = header.Unit
	frame[7] = byte(header.Function)
	return frame
}

func (header *ApplicationProtocolHeader) Decode(frame []byte) error {
	if len(frame) < HeadLength {
		return ErrorPacket
	}
	header.Transaction = binary.BigEndian.Uint16(frame[0:2])
	header.Protocol = binary.BigEndian.Uint16(frame[2:4])
	header.Length = binary.BigEndian.Uint16(frame[4:6])
	header.Unit = frame[6]
	header.Function = Function(frame[7])
	return nil
}

// BodyLength is the number of bytes following the header on the wire.
func (header *ApplicationProtocolHeader) BodyLength() int {
	return int(header.Length) - 2
}

func (header *ApplicationProtocolHeader) String() string {
	return fmt.Sprintf("{ Transaction: %d, Protocol: %d, Length: %d, Unit: %d, Function: %s }",
		header.Transaction, header.Protocol, header.Length, header.Unit, header.Function)
}
