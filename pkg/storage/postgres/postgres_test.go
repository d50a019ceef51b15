package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/storage"
	"github.com/papercomputeco/creatormem/pkg/storage/postgres"
	"github.com/papercomputeco/creatormem/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	var dsn string

	BeforeEach(func() {
		dsn = os.Getenv("CREATORMEM_TEST_POSTGRES_DSN")
		if dsn == "" {
			Skip("CREATORMEM_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
		}
	})

	storagetest.DescribeDriver(func() storage.Driver {
		d, err := postgres.NewDriver(context.Background(), dsn)
		Expect(err).NotTo(HaveOccurred())

		err = d.Conn.Exec(context.Background(), "TRUNCATE user_records", []any{}, nil)
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	It("fails to connect to an unreachable server", func() {
		_, err := postgres.NewDriver(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
		Expect(err).To(HaveOccurred())
	})
})
