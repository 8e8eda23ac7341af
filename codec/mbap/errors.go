package mbap

import (
	"errors"
	"fmt"
)

var (
	ErrorPacket            = errors.New("error packet")
	ErrInvalidProtocol     = errors.New("invalid protocol id")
	ErrUnsupportedFunction = errors.New("unsupported function")
	ErrInvalidPayload      = errors.New("invalid payload")
)

// ErrorCode is the outcome of a transaction. Positive values are Modbus
// exception codes sent by the server, negative values are detected locally
// and never appear on the wire.
type ErrorCode int

const (
	InvalidExceptionCode               = ErrorCode(-4) // exception response with code 0
	UnitMismatch                       = ErrorCode(-3)
	InvalidTransactionId               = ErrorCode(-2)
	MessageSizeError                   = ErrorCode(-1)
	NoError                            = ErrorCode(0)
	IllegalFunction                    = ErrorCode(0x01)
	IllegalDataAddress                 = ErrorCode(0x02)
	IllegalDataValue                   = ErrorCode(0x03)
	ServerDeviceFailure                = ErrorCode(0x04)
	Acknowledge                        = ErrorCode(0x05)
	ServerDeviceBusy                   = ErrorCode(0x06)
	MemoryParityError                  = ErrorCode(0x08)
	GatewayPathUnavailable             = ErrorCode(0x0A)
	GatewayTargetDeviceFailedToRespond = ErrorCode(0x0B)
)

var ErrorMessages = map[ErrorCode]string{
	InvalidExceptionCode:               "invalid exception code",
	UnitMismatch:                       "unit mismatch",
	InvalidTransactionId:               "invalid transaction ID",
	MessageSizeError:                   "message size error",
	NoError:                            "no error",
	IllegalFunction:                    "illegal function",
	IllegalDataAddress:                 "illegal data address",
	IllegalDataValue:                   "illegal data value",
	ServerDeviceFailure:                "server device failure",
	Acknowledge:                        "acknowledge",
	ServerDeviceBusy:                   "server device busy",
	MemoryParityError:                  "memory parity error",
	GatewayPathUnavailable:             "gateway path unavailable",
	GatewayTargetDeviceFailedToRespond: "gateway target failed to respond",
}

func (c ErrorCode) String() string {
	if msg, ok := ErrorMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("exception %d", int(c))
}

// Err wraps c into a *ModbusError, nil for NoError.
func (c ErrorCode) Err() error {
	if c == NoError {
		return nil
	}
	return &ModbusError{Code: c}
}

// ModbusError carries a non-zero ErrorCode through error returns.
type ModbusError struct {
	Code ErrorCode
}

func (e *ModbusError) Error() string {
	return fmt.Sprintf("modbus error %d: %s", int(e.Code), e.Code)
}

// Is matches any *ModbusError with the same code.
func (e *ModbusError) Is(target error) bool {
	t, ok := target.(*ModbusError)
	return ok && t.Code == e.Code
}
