package codec

// IHead is a fixed size frame header.
type IHead interface {
	Encode() []byte
	Decode([]byte) error
	String() string
}

// Pdu is a fixed size protocol data unit, optionally followed by a payload.
type Pdu interface {
	Len() int
	Encode() []byte
	Decode(frame []byte) error
	String() string
}

// Sequence16 yields 16 bit transaction ids.
type Sequence16 interface {
	NextVal() uint16
}
