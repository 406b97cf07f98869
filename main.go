package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/barikyo/ciallo/internal/cli"
)

func main() {
	var args cli.Args
	parser, err := arg.NewParser(arg.Config{Program: "ciallo"}, &args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// 'ciallo example.com' is shorthand for 'ciallo browse example.com'
	err = parser.Parse(cli.NormalizeArgs(os.Args[1:]))
	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelpForSubcommand(os.Stdout, parser.SubcommandNames()...)
		os.Exit(0)
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(args.Version())
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		parser.WriteUsage(os.Stderr)
		os.Exit(1)
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliHandler.Execute(ctx, &args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
