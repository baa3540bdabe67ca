package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/openmachinelabs/productivity/internal/config"
	"github.com/openmachinelabs/productivity/internal/driver"
	"github.com/openmachinelabs/productivity/internal/modbus"
	"github.com/openmachinelabs/productivity/internal/tags"
	"github.com/openmachinelabs/productivity/internal/types"
)

const usage = `usage: plctool [flags] <operation> <args>

operations:
  read-coils <address> <count>
  read-discrete <address> <count>
  read-holding <address> <count>
  read-input <address> <count>
  write-coil <address> 0|1
  write-coils <address> <0|1>...
  write-register <address> <value>
  write-registers <address> <value>...
`

func main() {
	configPath := flag.String("config", "configs/config.yaml", "configuration file")
	useMock := flag.Bool("mock", false, "use the in-memory transport instead of a PLC")
	flag.Parse()

	// Logger initialisieren
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Config laden
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	var tagIndex map[int]types.Tag
	if cfg.Tags.Filepath != "" {
		loaded, err := tags.LoadFile(cfg.Tags.Filepath)
		if err != nil {
			logger.Fatal("Failed to load tag database", zap.Error(err))
		}
		tagIndex = tags.Index(loaded)
		logger.Info("Tag database loaded",
			zap.String("file", cfg.Tags.Filepath),
			zap.Int("tags", len(loaded)))
	}

	var transport modbus.Transport
	if *useMock {
		transport = modbus.NewMockTransport()
	} else {
		transport = modbus.NewTCPTransport(modbus.TCPConfig{
			Address: cfg.PLC.Address(),
			UnitID:  byte(cfg.PLC.UnitID),
			Timeout: cfg.PLC.Timeout,
		})
	}

	client := driver.New(transport, tagIndex, cfg.PLC.Timeout, logger)
	defer client.Close()

	if err := run(client, flag.Args()); err != nil {
		logger.Fatal("Operation failed", zap.Error(err))
	}
}

func run(client *driver.Client, args []string) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	op, args := args[0], args[1:]
	ctx := context.Background()

	switch op {
	case "read-coils", "read-discrete":
		address, count, err := parsePair(args)
		if err != nil {
			return err
		}
		var bits []bool
		if op == "read-coils" {
			bits, err = client.ReadCoils(ctx, address, count)
		} else {
			bits, err = client.ReadDiscreteInputs(ctx, address, count)
		}
		if err != nil {
			return err
		}
		fmt.Println(bits)

	case "read-holding", "read-input":
		address, count, err := parsePair(args)
		if err != nil {
			return err
		}
		category := types.CategoryHolding
		if op == "read-input" {
			category = types.CategoryInput
		}
		words, err := client.ReadRegisters(ctx, int(address), int(count), category, driver.MaxReadChunk)
		if err != nil {
			return err
		}
		fmt.Println(words)

	case "write-coil":
		address, value, err := parsePair(args)
		if err != nil {
			return err
		}
		resp, err := client.WriteCoil(ctx, address, value != 0)
		if err != nil {
			return err
		}
		fmt.Printf("wrote coil %d\n", resp.Address)

	case "write-coils":
		address, values, err := parseSpan(args)
		if err != nil {
			return err
		}
		bits := make([]bool, len(values))
		for i, v := range values {
			bits[i] = v != 0
		}
		resp, err := client.WriteCoils(ctx, address, bits)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d coils at %d\n", resp.Count, resp.Address)

	case "write-register":
		address, value, err := parsePair(args)
		if err != nil {
			return err
		}
		resp, err := client.WriteRegister(ctx, address, value)
		if err != nil {
			return err
		}
		fmt.Printf("wrote register %d\n", resp.Address)

	case "write-registers":
		address, values, err := parseSpan(args)
		if err != nil {
			return err
		}
		resps, err := client.WriteRegisters(ctx, address, values)
		if err != nil {
			return err
		}
		for _, resp := range resps {
			fmt.Printf("wrote %d registers at %d\n", resp.Count, resp.Address)
		}

	default:
		return fmt.Errorf("%w: %q", modbus.ErrUnsupported, op)
	}
	return nil
}

func parsePair(args []string) (uint16, uint16, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected <address> and one value, got %d arguments", len(args))
	}
	address, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad address %q: %w", args[0], err)
	}
	value, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad value %q: %w", args[1], err)
	}
	return uint16(address), uint16(value), nil
}

func parseSpan(args []string) (uint16, []uint16, error) {
	if len(args) < 2 {
		return 0, nil, fmt.Errorf("expected <address> and at least one value")
	}
	address, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return 0, nil, fmt.Errorf("bad address %q: %w", args[0], err)
	}
	values := make([]uint16, len(args)-1)
	for i, arg := range args[1:] {
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return 0, nil, fmt.Errorf("bad value %q: %w", arg, err)
		}
		values[i] = uint16(v)
	}
	return uint16(address), values, nil
}
