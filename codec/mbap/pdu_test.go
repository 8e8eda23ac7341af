package mbap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPdu_RoundTrip(t *testing.T) {
	cases := []struct {
		in  Pdu
		out Pdu
	}{
		{&ReadRequest{Start: 0xFFFE, Count: 125}, &ReadRequest{}},
		{&WriteRequest{Start: 9, Count: 3, Size: 6}, &WriteRequest{}},
		{&SingleWriteRequest{Start: 0x8001}, &SingleWriteRequest{}},
		{&ReadResponse{Size: 250}, &ReadResponse{}},
		{&WriteResponse{Start: 1, Count: 0x7B}, &WriteResponse{}},
		{&SingleWriteResponse{Start: 42}, &SingleWriteResponse{}},
		{&ErrorResponse{ExceptionCode: 0x0B}, &ErrorResponse{}},
	}
	for _, c := range cases {
		frame := c.in.Encode()
		t.Logf("%T %s %x", c.in, c.in, frame)
		assert.Equal(t, c.in.Len(), len(frame))
		assert.NoError(t, c.out.Decode(frame))
		assert.Equal(t, c.in, c.out)
		assert.True(t, errors.Is(c.out.Decode(frame[:len(frame)-1]), ErrorPacket))
	}
}

func TestPdu_PayloadSize(t *testing.T) {
	size, ok := (&SingleWriteResponse{}).PayloadSize()
	assert.True(t, ok)
	assert.Equal(t, 2, size)

	size, ok = (&ReadResponse{Size: 8}).PayloadSize()
	assert.True(t, ok)
	assert.Equal(t, 8, size)

	_, ok = (&WriteResponse{}).PayloadSize()
	assert.False(t, ok)
}

func TestNewPdu_Tables(t *testing.T) {
	p, err := NewRequestPdu(WriteSingleRegister)
	assert.NoError(t, err)
	assert.IsType(t, &SingleWriteRequest{}, p)

	p, err = NewResponsePdu(WriteSingleRegister)
	assert.NoError(t, err)
	assert.IsType(t, &SingleWriteResponse{}, p)

	for _, f := range []Function{ReadCoils, ReadHoldingRegisters, ReadInputRegisters} {
		p, err = NewRequestPdu(f)
		assert.NoError(t, err)
		assert.IsType(t, &ReadRequest{}, p)
		p, err = NewResponsePdu(f)
		assert.NoError(t, err)
		assert.IsType(t, &ReadResponse{}, p)
	}

	_, err = NewRequestPdu(Function(0x83))
	assert.True(t, errors.Is(err, ErrUnsupportedFunction))
	p, err = NewResponsePdu(Function(0x83))
	assert.NoError(t, err)
	assert.IsType(t, &ErrorResponse{}, p)
}
