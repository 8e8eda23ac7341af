// Package payload converts between register bytes and Go values. The
// client only moves bytes; a Message tells it how many registers to
// address and how to interpret them.
package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/claashk/modbusclient/comm"
)

var (
	ErrValue  = errors.New("unsupported value")
	ErrLength = errors.New("length mismatch")
)

// DataType encodes values into exactly Len bytes and back.
type DataType interface {
	Len() int
	Encode(v interface{}) ([]byte, error)
	Decode(b []byte) (interface{}, error)
}

func checkLen(t DataType, b []byte) error {
	if len(b) != t.Len() {
		return fmt.Errorf("%w: %T expects %d bytes, got %d", ErrLength, t, t.Len(), len(b))
	}
	return nil
}

// Raw passes n bytes through unchanged.
type Raw int

func (r Raw) Len() int { return int(r) }

func (r Raw) Encode(v interface{}) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %T for Raw", ErrValue, v)
	}
	if err := checkLen(r, b); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r Raw) Decode(b []byte) (interface{}, error) {
	if err := checkLen(r, b); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Uint16 is one register.
type Uint16 struct{}

func (Uint16) Len() int { return 2 }

func (t Uint16) Encode(v interface{}) ([]byte, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d out of range for Uint16", ErrValue, n)
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(n))
	return b, nil
}

func (t Uint16) Decode(b []byte) (interface{}, error) {
	if err := checkLen(t, b); err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Int16 is one register, two's complement.
type Int16 struct{}

func (Int16) Len() int { return 2 }

func (t Int16) Encode(v interface{}) ([]byte, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt16 || n > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %d out of range for Int16", ErrValue, n)
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(int16(n)))
	return b, nil
}

func (t Int16) Decode(b []byte) (interface{}, error) {
	if err := checkLen(t, b); err != nil {
		return nil, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// Uint32 spans two registers. Modbus leaves the register order open;
// SwapWords puts the low word first.
type Uint32 struct {
	SwapWords bool
}

func (Uint32) Len() int { return 4 }

func (t Uint32) Encode(v interface{}) ([]byte, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d out of range for Uint32", ErrValue, n)
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	return swapWords(b, t.SwapWords), nil
}

func (t Uint32) Decode(b []byte) (interface{}, error) {
	if err := checkLen(t, b); err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint32(swapWords(b, t.SwapWords)), nil
}

// Int32 is the signed counterpart of Uint32.
type Int32 struct {
	SwapWords bool
}

func (Int32) Len() int { return 4 }

func (t Int32) Encode(v interface{}) ([]byte, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d out of range for Int32", ErrValue, n)
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(n)))
	return swapWords(b, t.SwapWords), nil
}

func (t Int32) Decode(b []byte) (interface{}, error) {
	if err := checkLen(t, b); err != nil {
		return nil, err
	}
	return int32(binary.BigEndian.Uint32(swapWords(b, t.SwapWords))), nil
}

// String is a NUL padded text field of Size bytes. Charset nil means UTF-8,
// devices commonly use charmap.ISO8859_1 or UTF-16BE.
type String struct {
	Size    int
	Charset encoding.Encoding
}

func (s String) Len() int { return s.Size }

func (s String) Encode(v interface{}) ([]byte, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T for String", ErrValue, v)
	}
	bts := []byte(str)
	if s.Charset != nil {
		var err error
		if bts, err = s.Charset.NewEncoder().Bytes(bts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValue, err)
		}
	}
	if len(bts) > s.Size {
		return nil, fmt.Errorf("%w: %d bytes exceed String(%d)", ErrLength, len(bts), s.Size)
	}
	b := make([]byte, s.Size)
	copy(b, bts)
	return b, nil
}

func (s String) Decode(b []byte) (interface{}, error) {
	if err := checkLen(s, b); err != nil {
		return nil, err
	}
	bts := b
	if s.Charset != nil {
		var err error
		if bts, err = s.Charset.NewDecoder().Bytes(b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValue, err)
		}
	}
	return strings.Clone(comm.TrimStr(bts)), nil
}

// BCD is one byte holding two decimal digits.
type BCD struct{}

func (BCD) Len() int { return 1 }

func (t BCD) Encode(v interface{}) ([]byte, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 99 {
		return nil, fmt.Errorf("%w: %d out of range for BCD", ErrValue, n)
	}
	return []byte{byte(n/10)<<4 | byte(n%10)}, nil
}

func (t BCD) Decode(b []byte) (interface{}, error) {
	if err := checkLen(t, b); err != nil {
		return nil, err
	}
	return int(b[0]>>4)*10 + int(b[0]&0x0F), nil
}

// swapWords reverses the order of the 16 bit words in b.
func swapWords(b []byte, swap bool) []byte {
	if !swap {
		return b
	}
	out := make([]byte, len(b))
	for i := 0; i+1 < len(b); i += 2 {
		j := len(b) - 2 - i
		out[j], out[j+1] = b[i], b[i+1]
	}
	return out
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrValue, v)
}
