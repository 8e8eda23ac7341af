package payload

import (
	"fmt"
	"strings"

	"github.com/claashk/modbusclient/codec/mbap"
)

// Mode lists the permitted access: "r" readable, "rw" also writable, "rw!"
// writable only after the device granted elevated access.
type Mode string

const (
	ReadOnly       Mode = "r"
	ReadWrite      Mode = "rw"
	WriteProtected Mode = "rw!"
)

// Message describes a value stored in consecutive holding registers
// starting at Address.
type Message struct {
	Address uint16
	Name    string
	Mode    Mode
	Type    DataType
}

func NewMessage(address uint16, name string, mode Mode, t DataType) *Message {
	return &Message{Address: address, Name: name, Mode: mode, Type: t}
}

func (m *Message) Len() int {
	return m.Type.Len()
}

// RegisterCount is the number of 2 byte registers covering the value.
func (m *Message) RegisterCount() uint16 {
	return uint16((m.Len() + 1) / 2)
}

func (m *Message) IsReadable() bool {
	return strings.Contains(string(m.Mode), "r")
}

func (m *Message) IsWritable() bool {
	return strings.Contains(string(m.Mode), "w")
}

func (m *Message) IsWriteProtected() bool {
	return strings.Contains(string(m.Mode), "w!")
}

func (m *Message) String() string {
	return fmt.Sprintf("Message %d (%s)", m.Address, m.Name)
}

// ReadRequest reads the registers holding m.
func (m *Message) ReadRequest(unit uint8) (mbap.Request, error) {
	if !m.IsReadable() {
		return mbap.Request{}, fmt.Errorf("%w: %s is not readable", ErrValue, m)
	}
	return mbap.Request{
		Function: mbap.ReadHoldingRegisters,
		Start:    m.Address,
		Count:    m.RegisterCount(),
		Unit:     unit,
	}, nil
}

// WriteRequest encodes v and writes it to the registers holding m. Values
// of odd length are padded with a zero byte.
func (m *Message) WriteRequest(unit uint8, v interface{}) (mbap.Request, error) {
	if !m.IsWritable() {
		return mbap.Request{}, fmt.Errorf("%w: %s is not writable", ErrValue, m)
	}
	b, err := m.Type.Encode(v)
	if err != nil {
		return mbap.Request{}, err
	}
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	return mbap.Request{
		Function: mbap.WriteMultipleRegisters,
		Start:    m.Address,
		Count:    m.RegisterCount(),
		Payload:  b,
		Unit:     unit,
	}, nil
}

// Decode interprets the payload of a read response, ignoring the padding
// byte of odd length values.
func (m *Message) Decode(payload []byte) (interface{}, error) {
	n := m.Len()
	if len(payload) < n || len(payload) > 2*int(m.RegisterCount()) {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrLength, m, n, len(payload))
	}
	return m.Type.Decode(payload[:n])
}
