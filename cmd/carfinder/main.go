package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"carfinder/apiclient"
	"carfinder/config"
	"carfinder/leads"
	"carfinder/logging"
	"carfinder/ui"

	"github.com/alecthomas/kong"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config is loaded from the environment when nil.
	Config *config.Config
}

func NewMain() *Main {
	return &Main{}
}

// Run parses args, wires the lead store chosen by LEAD_STORE and runs the
// command.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("carfinder"),
		kong.Description("Search car listings and keep notes on the ones worth a call."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.UsageOnError(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'carfinder --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := m.Config
	if cfg == nil {
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	log.SetOutput(stderr)
	log.SetFlags(0)
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if !cli.Verbose {
		logging.SetLevel(logging.LevelWarn)
	}

	client := apiclient.NewClient(cfg.Client.APIURL, apiclient.WithTimeout(cfg.Client.Timeout))
	store, err := newStore(cfg.Client, client)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Store:   store,
		Session: ui.NewSession(client, store),
	}
	return kongCtx.Run(deps)
}

func newStore(cfg config.ClientConfig, client *apiclient.Client) (leads.Store, error) {
	switch cfg.LeadStore {
	case config.LeadStoreLocal, "":
		return leads.NewFileStore(cfg.LeadsDir), nil
	case config.LeadStoreRemote:
		return leads.NewRemoteStore(client), nil
	default:
		return nil, fmt.Errorf("unknown LEAD_STORE %q, expected %q or %q", cfg.LeadStore, config.LeadStoreLocal, config.LeadStoreRemote)
	}
}
