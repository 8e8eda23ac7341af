package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/claashk/modbusclient/codec/mbap"
)

func TestDataTypes(t *testing.T) {
	cases := []struct {
		dtype DataType
		value interface{}
		bytes []byte
	}{
		{Raw(3), []byte{1, 2, 3}, []byte{1, 2, 3}},
		{Uint16{}, uint16(0xABCD), []byte{0xAB, 0xCD}},
		{Int16{}, int16(-2), []byte{0xFF, 0xFE}},
		{Uint32{}, uint32(0x01020304), []byte{1, 2, 3, 4}},
		{Uint32{SwapWords: true}, uint32(0x01020304), []byte{3, 4, 1, 2}},
		{Int32{}, int32(-1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{BCD{}, 42, []byte{0x42}},
		{String{Size: 6}, "abc", []byte{'a', 'b', 'c', 0, 0, 0}},
		{String{Size: 4, Charset: charmap.ISO8859_1}, "äb", []byte{0xE4, 'b', 0, 0}},
		{String{Size: 6, Charset: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}, "ok", []byte{0, 'o', 0, 'k', 0, 0}},
	}
	for _, c := range cases {
		b, err := c.dtype.Encode(c.value)
		require.NoError(t, err, "%T", c.dtype)
		assert.Equal(t, c.bytes, b, "%T", c.dtype)
		assert.Equal(t, c.dtype.Len(), len(b))

		v, err := c.dtype.Decode(b)
		require.NoError(t, err, "%T", c.dtype)
		assert.Equal(t, c.value, v, "%T", c.dtype)
	}
}

func TestDataTypes_Invalid(t *testing.T) {
	_, err := Uint16{}.Encode(70000)
	assert.True(t, errors.Is(err, ErrValue))
	_, err = Int16{}.Encode("1")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = BCD{}.Encode(100)
	assert.True(t, errors.Is(err, ErrValue))
	_, err = String{Size: 2}.Encode("abc")
	assert.True(t, errors.Is(err, ErrLength))
	_, err = String{Size: 2, Charset: charmap.ISO8859_1}.Encode("€")
	assert.True(t, errors.Is(err, ErrValue))
	_, err = Uint32{}.Decode([]byte{1, 2})
	assert.True(t, errors.Is(err, ErrLength))
	_, err = Raw(2).Encode([]byte{1})
	assert.True(t, errors.Is(err, ErrLength))
}

func TestMessage(t *testing.T) {
	m := NewMessage(30201, "status", ReadOnly, Uint32{})
	assert.Equal(t, uint16(2), m.RegisterCount())
	assert.True(t, m.IsReadable())
	assert.False(t, m.IsWritable())

	req, err := m.ReadRequest(3)
	require.NoError(t, err)
	assert.Equal(t, mbap.Request{Function: mbap.ReadHoldingRegisters, Start: 30201, Count: 2, Unit: 3}, req)
	_, err = m.WriteRequest(3, 1)
	assert.True(t, errors.Is(err, ErrValue))

	v, err := m.Decode([]byte{0, 0, 1, 0x37})
	require.NoError(t, err)
	assert.Equal(t, uint32(311), v)
}

func TestMessage_OddLength(t *testing.T) {
	m := NewMessage(40000, "name", WriteProtected, String{Size: 3})
	assert.True(t, m.IsWriteProtected())
	assert.Equal(t, uint16(2), m.RegisterCount())

	req, err := m.WriteRequest(mbap.NoUnit, "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 0, 0}, req.Payload)
	assert.Equal(t, uint16(2), req.Count)

	_, frame, err := mbap.NewRequest(req)
	require.NoError(t, err)
	assert.Equal(t, mbap.HeadLength+5+4, len(frame))

	v, err := m.Decode([]byte{'x', 'y', 'z', 0})
	require.NoError(t, err)
	assert.Equal(t, "xyz", v)

	_, err = m.Decode([]byte{'x', 'y'})
	assert.True(t, errors.Is(err, ErrLength))
}
