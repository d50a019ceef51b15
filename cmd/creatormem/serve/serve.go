// Package servecmder provides the serve command that runs the creatormem API
// and MCP server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/creatormem/api"
	"github.com/papercomputeco/creatormem/api/mcp"
	"github.com/papercomputeco/creatormem/pkg/config"
	"github.com/papercomputeco/creatormem/pkg/dotdir"
	"github.com/papercomputeco/creatormem/pkg/eventstream"
	"github.com/papercomputeco/creatormem/pkg/eventstream/kafka"
	"github.com/papercomputeco/creatormem/pkg/eventstream/nop"
	"github.com/papercomputeco/creatormem/pkg/logger"
	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage"
	"github.com/papercomputeco/creatormem/pkg/storage/inmemory"
	"github.com/papercomputeco/creatormem/pkg/storage/postgres"
	"github.com/papercomputeco/creatormem/pkg/storage/sqlite"
	"github.com/papercomputeco/creatormem/pkg/worker"
)

// Storage and event stream provider names.
const (
	StorageInMemory = "inmemory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"

	defaultSQLiteFile = "creatormem.sqlite"
)

type serveCommander struct {
	flags config.FlagSet

	listen       string
	storage      string
	sqlitePath   string
	postgresDSN  string
	diffMode     string
	eventStream  string
	kafkaBrokers string
	kafkaTopic   string
	workers      uint
	logJSON      bool

	debug     bool
	configDir string
	logFile   string

	logger *slog.Logger
}

var serveFlags = config.FlagSet{
	config.FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagStorage: {
		Name:        "storage",
		ViperKey:    "storage.provider",
		Description: "Storage provider (inmemory, sqlite, postgres)",
	},
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database (default: creatormem.sqlite in the .creatormem/ directory)",
	},
	config.FlagPostgres: {
		Name:        "postgres",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string",
	},
	config.FlagDiffMode: {
		Name:        "diff-mode",
		ViperKey:    "memory.diff_mode",
		Description: "How profile collections are diffed (shallow, structural)",
	},
	config.FlagEventStream: {
		Name:        "eventstream",
		ViperKey:    "eventstream.provider",
		Description: "Memory change event stream (nop, kafka)",
	},
	config.FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Comma separated Kafka broker addresses",
	},
	config.FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for memory change events",
	},
	config.FlagWorkers: {
		Name:        "workers",
		ViperKey:    "eventstream.workers",
		Description: "Number of event publishing workers",
	},
	config.FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Emit structured JSON logs",
	},
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagDiffMode,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagWorkers,
	config.FlagLogJSON,
}

const serveLongDesc string = `Run the creatormem server.

Serves the user memory API on /api/user-memory and the MCP server on /mcp.
Records are kept in memory by default; use --storage sqlite or
--storage postgres to persist them. With --eventstream kafka every applied
change is published to the configured topic.

Flags take precedence over CREATORMEM_* environment variables, which take
precedence over config.toml in the .creatormem/ directory.

Examples:
  creatormem serve
  creatormem serve --storage sqlite --sqlite ./memory.sqlite
  creatormem serve --storage postgres --postgres postgres://localhost/creatormem --eventstream kafka`

const serveShortDesc string = "Run the creatormem server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{
		flags: serveFlags,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, serveFlagKeys)
			cmder.load(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, cmder.flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, cmder.flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, cmder.flags, config.FlagDiffMode, &cmder.diffMode)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, cmder.flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, cmder.flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddUintFlag(cmd, cmder.flags, config.FlagWorkers, &cmder.workers)
	config.AddBoolFlag(cmd, cmder.flags, config.FlagLogJSON, &cmder.logJSON)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write logs to this file")

	return cmd
}

// load copies the resolved configuration out of v.
func (c *serveCommander) load(v *viper.Viper) {
	c.listen = v.GetString("api.listen")
	c.storage = v.GetString("storage.provider")
	c.sqlitePath = v.GetString("storage.sqlite_path")
	c.postgresDSN = v.GetString("storage.postgres_dsn")
	c.diffMode = v.GetString("memory.diff_mode")
	c.eventStream = v.GetString("eventstream.provider")
	c.kafkaBrokers = v.GetString("eventstream.brokers")
	c.kafkaTopic = v.GetString("eventstream.topic")
	c.workers = v.GetUint("eventstream.workers")
	c.logJSON = v.GetBool("log.json")
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var closeLog func() error
	var err error
	c.logger, closeLog, err = c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	diffMode, err := record.ParseDiffMode(c.diffMode)
	if err != nil {
		return err
	}

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher:  publisher,
		NumWorkers: c.workers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	// Drain queued events before the publisher is closed.
	defer pool.Close()

	manager, err := memory.NewManager(memory.Config{
		Driver:   driver,
		Events:   pool,
		DiffMode: diffMode,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating memory manager: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Manager: manager,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.listen,
		Manager:    manager,
		MCP:        mcpServer,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	if err := server.Shutdown(); err != nil {
		c.logger.Error("API server shutdown failed", "error", err)
	}
	return nil
}

// newLogger logs to stdout and, with --log-file, also writes JSON lines with
// source locations to the file.
func (c *serveCommander) newLogger() (*slog.Logger, func() error, error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.logJSON),
		logger.WithPretty(!c.logJSON),
	)
	if c.logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithSource(true),
		logger.WithWriter(f),
	)
	return logger.Multi(console, file), f.Close, nil
}

func (c *serveCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.storage {
	case "", StorageInMemory:
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case StorageSQLite:
		path, err := c.resolveSQLitePath()
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case StoragePostgres:
		if c.postgresDSN == "" {
			return nil, errors.New("--postgres is required for postgres storage")
		}
		driver, err := postgres.NewDriver(ctx, c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q (expected %s, %s or %s)",
			c.storage, StorageInMemory, StorageSQLite, StoragePostgres)
	}
}

// resolveSQLitePath falls back to creatormem.sqlite in the resolved
// .creatormem/ directory, creating ~/.creatormem/ when none exists.
func (c *serveCommander) resolveSQLitePath() (string, error) {
	if c.sqlitePath != "" {
		return c.sqlitePath, nil
	}

	ddm := dotdir.NewManager()
	dir, err := ddm.Target(c.configDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir, err = ddm.Home()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, defaultSQLiteFile), nil
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.eventStream {
	case "", EventStreamNop:
		return nop.NewPublisher(), nil

	case EventStreamKafka:
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: splitBrokers(c.kafkaBrokers),
			Topic:   c.kafkaTopic,
			Logger:  c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing memory events to kafka",
			"brokers", c.kafkaBrokers,
			"topic", c.kafkaTopic,
		)
		return publisher, nil

	default:
		return nil, fmt.Errorf("unknown event stream provider %q (expected %s or %s)",
			c.eventStream, EventStreamNop, EventStreamKafka)
	}
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
