package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/btcgraph/internal/logging"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	Log logging.Config `group:"Logging Options"`
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	ctx  context.Context
	opts options
}

func (a *app) logger() (*zap.Logger, func(), error) {
	return logging.New(a.opts.Log)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx}
	parser := flags.NewParser(&a.opts, flags.Default)
	commands := []struct {
		name, short, long string
		data              any
	}{
		{"export", "Export a block as a CAR archive", "Fetch a block by height from a node, encode it and write its units to a CAR file.", &exportCommand{app: a}},
		{"assemble", "Assemble the root block of a CAR archive", "Rebuild and verify the block rooted in a CAR file, then print its hex or write the raw bytes.", &assembleCommand{app: a}},
		{"import", "Import a CAR archive into a unit store", "Copy every unit of a CAR file into the configured store and optionally record its root.", &importCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			fmt.Fprintf(os.Stderr, "register %s command: %v\n", c.name, err)
			os.Exit(1)
		}
	}

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
