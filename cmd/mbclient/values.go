package main

import (
	"fmt"

	"github.com/claashk/modbusclient/payload"
)

func parseType(name string, size int) (payload.DataType, error) {
	switch name {
	case "raw":
		return payload.Raw(size), nil
	case "u16":
		return payload.Uint16{}, nil
	case "i16":
		return payload.Int16{}, nil
	case "u32":
		return payload.Uint32{}, nil
	case "i32":
		return payload.Int32{}, nil
	case "string":
		return payload.String{Size: size}, nil
	case "bcd":
		return payload.BCD{}, nil
	}
	return nil, fmt.Errorf("%w: type %q", payload.ErrValue, name)
}

// decodeValues splits the registers read from start into consecutive
// values of the named type. Each value starts on a register boundary.
func decodeValues(name string, start uint16, b []byte) ([]interface{}, error) {
	t, err := parseType(name, len(b))
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, nil
	}
	var values []interface{}
	for i := 0; i < len(b); {
		m := payload.NewMessage(start, name, payload.ReadOnly, t)
		width := 2 * int(m.RegisterCount())
		v, err := m.Decode(b[i:min(i+width, len(b))])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		i += width
		start += m.RegisterCount()
	}
	return values, nil
}
