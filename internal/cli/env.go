package cli

import (
	"fmt"

	"github.com/SscSPs/closing_engine/internal/core/services"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/SscSPs/closing_engine/internal/platform/config"
	"github.com/SscSPs/closing_engine/internal/platform/events"
	"github.com/SscSPs/closing_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/closing_engine/internal/repositories/memory"
	"github.com/SscSPs/closing_engine/pkg/database"
	"github.com/spf13/cobra"
)

// environment is the wired engine a command runs against.
type environment struct {
	services *portssvc.ServiceContainer
	store    *memory.Store // set in ledger-file mode
	closers  []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// openEnvironment wires the engine against the ledger file or the configured database.
func openEnvironment(cmd *cobra.Command, flags *globalFlags) (*environment, error) {
	if err := validate.Struct(flags); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	if flags.SaveTo != "" && flags.LedgerFile == "" {
		return nil, fmt.Errorf("invalid flags: --save requires --ledger")
	}

	if flags.LedgerFile != "" {
		store, err := memory.OpenLedgerFile(flags.LedgerFile)
		if err != nil {
			return nil, err
		}
		return &environment{
			services: services.NewServiceContainer(services.DefaultClosingConfig(), store.Provider()),
			store:    store,
		}, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, err
	}
	env := &environment{closers: []func(){pool.Close}}

	var options []services.ClosingServiceOption
	if cfg.RedisURL != "" {
		rdb, err := events.Connect(ctx, cfg.RedisURL)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, func() { _ = rdb.Close() })
		options = append(options, services.WithEventPublisher(events.NewRedisPublisher(rdb, cfg.EventsChannel)))
	}

	env.services = services.NewServiceContainer(cfg.ClosingConfig(), pgsql.NewRepositoryProvider(pool), options...)
	return env, nil
}

// persist writes the ledger file back when --save was given.
func (e *environment) persist(flags *globalFlags) error {
	if e.store == nil || flags.SaveTo == "" {
		return nil
	}
	return e.store.SaveLedgerFile(flags.SaveTo)
}
