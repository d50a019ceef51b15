package sqldriver

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/record"
)

var _ = Describe("SQLDriver", func() {
	var rec *record.UserRecord

	BeforeEach(func() {
		rec = record.New("u1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	})

	Describe("queries", func() {
		It("uses numbered placeholders for PostgreSQL", func() {
			query, args := upsertRecord(entsql.Dialect(dialect.Postgres), rec, "{}")
			Expect(query).To(ContainSubstring("$1"))
			Expect(query).To(ContainSubstring("$4"))
			Expect(query).NotTo(ContainSubstring("?"))
			Expect(query).To(ContainSubstring("ON CONFLICT"))
			Expect(query).To(ContainSubstring("DO UPDATE SET"))
			Expect(args).To(HaveLen(4))
			Expect(args[0]).To(Equal("u1"))
			Expect(args[3]).To(Equal("{}"))
		})

		It("uses question placeholders for SQLite", func() {
			query, args := selectRecord(entsql.Dialect(dialect.SQLite), "u1")
			Expect(query).To(ContainSubstring("?"))
			Expect(query).NotTo(ContainSubstring("$1"))
			Expect(args).To(Equal([]any{"u1"}))
		})

		It("ignores conflicts on create", func() {
			query, _ := insertRecord(entsql.Dialect(dialect.Postgres), rec, "{}")
			Expect(query).To(ContainSubstring("ON CONFLICT"))
			Expect(query).To(ContainSubstring("DO NOTHING"))
		})

		It("orders listed users", func() {
			query, args := listUsers(entsql.Dialect(dialect.SQLite))
			Expect(query).To(ContainSubstring("ORDER BY"))
			Expect(args).To(BeEmpty())
		})

		It("stores timestamps in UTC", func() {
			loc := time.FixedZone("UTC+2", 2*60*60)
			rec.CreatedAt = time.Date(2026, 1, 2, 5, 4, 5, 6, loc)

			_, args := insertRecord(entsql.Dialect(dialect.SQLite), rec, "{}")
			Expect(args[1]).To(Equal(time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)))
		})
	})

	Describe("New", func() {
		It("migrates the schema more than once", func() {
			ctx := context.Background()
			conn, err := entsql.Open(dialect.SQLite, "file:migrate?mode=memory&cache=shared&_fk=1")
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			d, err := New(ctx, conn)
			Expect(err).NotTo(HaveOccurred())
			Expect(Migrate(ctx, conn)).To(Succeed())

			created, ok, err := d.CreateIfAbsent(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(created.UserID).To(Equal("u1"))
		})
	})
})
