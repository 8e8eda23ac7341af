package modbusclient

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claashk/modbusclient/codec/mbap"
)

// Command is one call as written in a batch file:
//
//	# commands.yaml
//	- function: ReadHoldingRegisters
//	  start: 30201
//	  count: 2
//	- function: WriteSingleRegister
//	  start: 40009
//	  data: "0001"
//	  unit: 3
type Command struct {
	Function string `yaml:"function"`
	Start    uint16 `yaml:"start"`
	Count    uint16 `yaml:"count"`
	Data     string `yaml:"data"` // hex
	Unit     *uint8 `yaml:"unit"`
	Repeat   int    `yaml:"repeat"`
}

// Request converts c, using unit when c names none.
func (c *Command) Request(unit uint8) (mbap.Request, error) {
	f, err := mbap.ParseFunction(c.Function)
	if err != nil {
		return mbap.Request{}, err
	}
	var payload []byte
	if c.Data != "" {
		if payload, err = hex.DecodeString(strings.ReplaceAll(c.Data, " ", "")); err != nil {
			return mbap.Request{}, fmt.Errorf("%w: %v", mbap.ErrInvalidPayload, err)
		}
	}
	if c.Unit != nil {
		unit = *c.Unit
	}
	return mbap.Request{Function: f, Start: c.Start, Count: c.Count, Payload: payload, Unit: unit}, nil
}

// LoadCommands reads a yaml list of commands.
func LoadCommands(path string) ([]Command, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cmds []Command
	if err = yaml.Unmarshal(bts, &cmds); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cmds, nil
}
