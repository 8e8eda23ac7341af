package mbap

import "fmt"

// Function is a Modbus function code. Responses carry the request's code,
// or the code with ErrorFlag set when the server reports an exception.
type Function uint8

const ErrorFlag = 0x80

const (
	ReadCoils                  = Function(1)
	ReadDiscreteInputs         = Function(2)
	ReadHoldingRegisters       = Function(3)
	ReadInputRegisters         = Function(4)
	WriteSingleCoil            = Function(5)
	WriteSingleRegister        = Function(6)
	ReadExceptionStatus        = Function(7)
	Diagnostic                 = Function(8)
	GetComEventCounter         = Function(11)
	GetComEventLog             = Function(12)
	WriteMultipleCoils         = Function(15)
	WriteMultipleRegisters     = Function(16)
	ReportServerID             = Function(17)
	ReadFileRecord             = Function(20)
	WriteFileRecord            = Function(21)
	MaskWriteRegister          = Function(22)
	ReadWriteMultipleRegisters = Function(23)
	ReadFifoQueue              = Function(24)
	ReadDeviceIdentification   = Function(43)
)

var FunctionMap = make(map[Function]string)

func init() {
	FunctionMap[ReadCoils] = "ReadCoils"
	FunctionMap[ReadDiscreteInputs] = "ReadDiscreteInputs"
	FunctionMap[ReadHoldingRegisters] = "ReadHoldingRegisters"
	FunctionMap[ReadInputRegisters] = "ReadInputRegisters"
	FunctionMap[WriteSingleCoil] = "WriteSingleCoil"
	FunctionMap[WriteSingleRegister] = "WriteSingleRegister"
	FunctionMap[ReadExceptionStatus] = "ReadExceptionStatus"
	FunctionMap[Diagnostic] = "Diagnostic"
	FunctionMap[GetComEventCounter] = "GetComEventCounter"
	FunctionMap[GetComEventLog] = "GetComEventLog"
	FunctionMap[WriteMultipleCoils] = "WriteMultipleCoils"
	FunctionMap[WriteMultipleRegisters] = "WriteMultipleRegisters"
	FunctionMap[ReportServerID] = "ReportServerID"
	FunctionMap[ReadFileRecord] = "ReadFileRecord"
	FunctionMap[WriteFileRecord] = "WriteFileRecord"
	FunctionMap[MaskWriteRegister] = "MaskWriteRegister"
	FunctionMap[ReadWriteMultipleRegisters] = "ReadWriteMultipleRegisters"
	FunctionMap[ReadFifoQueue] = "ReadFifoQueue"
	FunctionMap[ReadDeviceIdentification] = "ReadDeviceIdentification"
}

// IsError reports whether f marks an exception response.
func (f Function) IsError() bool {
	return f > ErrorFlag
}

func (f Function) String() string {
	if f.IsError() {
		return fmt.Sprintf("Error(%s)", f&^ErrorFlag)
	}
	if name, ok := FunctionMap[f]; ok {
		return name
	}
	return fmt.Sprintf("Function(%d)", uint8(f))
}

// ParseFunction accepts a name from FunctionMap or a decimal/hex code.
func ParseFunction(s string) (Function, error) {
	for f, name := range FunctionMap {
		if name == s {
			return f, nil
		}
	}
	var code uint8
	if _, err := fmt.Sscan(s, &code); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFunction, s)
	}
	return Function(code), nil
}
