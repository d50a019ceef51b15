package servecmder

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/config"
	"github.com/papercomputeco/creatormem/pkg/eventstream/kafka"
	"github.com/papercomputeco/creatormem/pkg/eventstream/nop"
	"github.com/papercomputeco/creatormem/pkg/logger"
	"github.com/papercomputeco/creatormem/pkg/storage/inmemory"
	"github.com/papercomputeco/creatormem/pkg/storage/sqlite"
)

var _ = Describe("NewServeCmd", func() {
	It("registers every serve flag with its config default", func() {
		cmd := NewServeCmd()

		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8081"))
		Expect(cmd.Flags().Lookup("listen").Shorthand).To(Equal("l"))
		Expect(cmd.Flags().Lookup("storage").DefValue).To(Equal("inmemory"))
		Expect(cmd.Flags().Lookup("diff-mode").DefValue).To(Equal("shallow"))
		Expect(cmd.Flags().Lookup("eventstream").DefValue).To(Equal("nop"))
		Expect(cmd.Flags().Lookup("kafka-topic").DefValue).To(Equal("creatormem.memory.events"))
		Expect(cmd.Flags().Lookup("workers").DefValue).To(Equal("2"))
		Expect(cmd.Flags().Lookup("log-json").DefValue).To(Equal("false"))
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
	})

	It("rejects positional arguments", func() {
		cmd := NewServeCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})
})

var _ = Describe("serveCommander", func() {
	var (
		cmder  *serveCommander
		ctx    context.Context
		tmpDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		cmder = &serveCommander{
			flags:  serveFlags,
			logger: logger.Nop(),
		}

		var err error
		tmpDir, err = os.MkdirTemp("", "creatormem-serve-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("load", func() {
		It("prefers flags over environment and defaults", func() {
			os.Setenv("CREATORMEM_STORAGE_PROVIDER", "sqlite")
			defer os.Unsetenv("CREATORMEM_STORAGE_PROVIDER")
			os.Setenv("CREATORMEM_EVENTSTREAM_WORKERS", "7")
			defer os.Unsetenv("CREATORMEM_EVENTSTREAM_WORKERS")

			cmd := NewServeCmd()
			Expect(cmd.Flags().Set("listen", ":9999")).To(Succeed())

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)

			cmder.load(v)
			Expect(cmder.listen).To(Equal(":9999"))
			Expect(cmder.storage).To(Equal("sqlite"))
			Expect(cmder.workers).To(Equal(uint(7)))
			Expect(cmder.diffMode).To(Equal("shallow"))
		})
	})

	Describe("newStorageDriver", func() {
		It("defaults to in-memory storage", func() {
			driver, err := cmder.newStorageDriver(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		})

		It("opens a SQLite database at the given path", func() {
			cmder.storage = StorageSQLite
			cmder.sqlitePath = filepath.Join(tmpDir, "memory.sqlite")

			driver, err := cmder.newStorageDriver(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()

			Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
			_, err = os.Stat(cmder.sqlitePath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires a DSN for postgres storage", func() {
			cmder.storage = StoragePostgres
			_, err := cmder.newStorageDriver(ctx)
			Expect(err).To(MatchError(ContainSubstring("--postgres is required")))
		})

		It("rejects unknown providers", func() {
			cmder.storage = "mongodb"
			_, err := cmder.newStorageDriver(ctx)
			Expect(err).To(MatchError(ContainSubstring("unknown storage provider")))
		})
	})

	Describe("resolveSQLitePath", func() {
		It("uses the explicit path", func() {
			cmder.sqlitePath = "memory.sqlite"
			Expect(cmder.resolveSQLitePath()).To(Equal("memory.sqlite"))
		})

		It("falls back to the config directory", func() {
			cmder.configDir = tmpDir
			path, err := cmder.resolveSQLitePath()
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(HaveSuffix(filepath.Join(filepath.Base(tmpDir), "creatormem.sqlite")))
		})
	})

	Describe("newPublisher", func() {
		It("defaults to the nop publisher", func() {
			publisher, err := cmder.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("creates a kafka publisher", func() {
			cmder.eventStream = EventStreamKafka
			cmder.kafkaBrokers = "localhost:9092, localhost:9093"
			cmder.kafkaTopic = "events"

			publisher, err := cmder.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			defer publisher.Close()
			Expect(publisher).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		})

		It("requires kafka brokers", func() {
			cmder.eventStream = EventStreamKafka
			cmder.kafkaTopic = "events"
			_, err := cmder.newPublisher()
			Expect(err).To(MatchError(ContainSubstring("broker")))
		})

		It("rejects unknown providers", func() {
			cmder.eventStream = "rabbitmq"
			_, err := cmder.newPublisher()
			Expect(err).To(MatchError(ContainSubstring("unknown event stream provider")))
		})
	})

	Describe("newLogger", func() {
		It("also writes JSON lines to the log file", func() {
			cmder.logFile = filepath.Join(tmpDir, "creatormem.log")

			l, closeLog, err := cmder.newLogger()
			Expect(err).NotTo(HaveOccurred())
			l.Info("hello", "user_id", "u1")
			Expect(closeLog()).To(Succeed())

			data, err := os.ReadFile(cmder.logFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"hello"`))
			Expect(string(data)).To(ContainSubstring(`"user_id":"u1"`))
			Expect(string(data)).To(ContainSubstring(`"source":`))
		})

		It("fails when the log file cannot be opened", func() {
			cmder.logFile = filepath.Join(tmpDir, "missing", "creatormem.log")
			_, _, err := cmder.newLogger()
			Expect(err).To(MatchError(ContainSubstring("opening log file")))
		})
	})

	Describe("splitBrokers", func() {
		It("trims and drops empty entries", func() {
			Expect(splitBrokers(" a:1, ,b:2,")).To(Equal([]string{"a:1", "b:2"}))
			Expect(splitBrokers("")).To(BeEmpty())
		})
	})
})
