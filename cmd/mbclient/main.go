package main

// export MODBUS_CONF_PATH="$HOME/.modbus.yaml"
// export MODBUS_LOGGING_LEVEL=-1
// export MODBUS_LOGGING_FILE="$HOME/logs/modbus.log"

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/claashk/modbusclient"
	"github.com/claashk/modbusclient/client"
	"github.com/claashk/modbusclient/codec"
	"github.com/claashk/modbusclient/codec/mbap"
	"github.com/claashk/modbusclient/comm"
	"github.com/claashk/modbusclient/comm/logging"
)

var log = logging.GetDefaultLogger()

var seq codec.Sequence16 = comm.NewCycleSequence(0, 0xFFFF)

func main() {
	var (
		conf, host, function, data, dtype, batch string
		port, unit, repeat, bench                int
		start, count                             uint
	)

	// Example command: go run ./cmd/mbclient --host 192.168.0.10 --unit 3 --fn ReadHoldingRegisters --start 30201 --count 2 --type u32
	flag.StringVar(&conf, "conf", "", "--conf modbus.yaml, defaults to $MODBUS_CONF_PATH")
	flag.StringVar(&host, "host", "", "--host 192.168.0.10")
	flag.IntVar(&port, "port", 0, "--port 502")
	flag.IntVar(&unit, "unit", -1, "--unit 3")
	flag.StringVar(&function, "fn", "ReadHoldingRegisters", "--fn ReadHoldingRegisters or --fn 3")
	flag.UintVar(&start, "start", 0, "--start 30201")
	flag.UintVar(&count, "count", 1, "--count 2")
	flag.StringVar(&data, "data", "", "--data 0001, hex payload to write")
	flag.StringVar(&dtype, "type", "raw", "--type raw|u16|i16|u32|i32|string|bcd")
	flag.IntVar(&repeat, "n", 1, "--n 10, repeat a single call")
	flag.IntVar(&bench, "bench", 0, "--bench 10000, issue the call concurrently")
	flag.StringVar(&batch, "batch", "", "--batch commands.yaml")
	flag.Parse()

	cfg, err := client.LoadConfig(conf)
	if err != nil {
		log.Errorf("[%-9s] %v", "Config", err)
		os.Exit(1)
	}
	if host != "" {
		cfg.Host = host
	}
	if port > 0 {
		cfg.Port = port
	}
	if unit >= 0 {
		cfg.Unit = uint8(unit)
	}
	if err = logging.Init(cfg.Logging); err != nil {
		log.Errorf("[%-9s] %v", "Config", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := modbusclient.Command{Function: function, Start: uint16(start), Count: uint16(count), Data: data, Repeat: bench}
	switch {
	case batch != "":
		var cmds []modbusclient.Command
		if cmds, err = modbusclient.LoadCommands(batch); err == nil {
			err = runBatch(ctx, cfg, cmds)
		}
	case bench > 0:
		err = runBatch(ctx, cfg, []modbusclient.Command{cmd})
	default:
		err = runSingle(ctx, cfg, cmd, repeat, dtype)
	}
	if err != nil {
		log.Errorf("[%-9s] %v", "Exit", err)
		stop()
		os.Exit(1)
	}
}

// runSingle issues cmd n times over a blocking client and prints the
// decoded values.
func runSingle(ctx context.Context, cfg client.Config, cmd modbusclient.Command, n int, dtype string) error {
	req, err := cmd.Request(cfg.Unit)
	if err != nil {
		return err
	}
	c := client.NewClient(cfg)
	if err = c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Disconnect() }()

	for i := 0; i < n; i++ {
		req.Transaction = seq.NextVal()
		resp, err := c.Call(ctx, req)
		if err != nil {
			return err
		}
		if req.Function == mbap.WriteMultipleRegisters {
			fmt.Printf("%d: ok\n", req.Transaction)
			continue
		}
		values, err := decodeValues(dtype, req.Start, resp.Payload)
		if err != nil {
			return err
		}
		fmt.Printf("%d: %v\n", req.Transaction, values)
	}
	return nil
}
