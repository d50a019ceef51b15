// Package storagetest holds the behavior every storage.Driver must share, as
// ginkgo specs that each driver suite runs against its own backend.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage"
)

// DescribeDriver registers the shared driver behavior tests. newDriver is called
// before each test and must return an empty driver.
func DescribeDriver(newDriver func() storage.Driver) {
	Describe("storage.Driver behavior", func() {
		var (
			ctx    context.Context
			driver storage.Driver
			now    time.Time
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver()
			now = time.Date(2026, 2, 3, 4, 5, 6, 789000000, time.UTC)
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("returns NotFoundError for an unknown user", func() {
			_, err := driver.Get(ctx, "nobody")
			var nf storage.NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.UserID).To(Equal("nobody"))
		})

		It("creates a record once", func() {
			created, ok, err := driver.CreateIfAbsent(ctx, record.New("u1", now))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(created.UserID).To(Equal("u1"))

			again, ok, err := driver.CreateIfAbsent(ctx, record.New("u1", now.Add(time.Hour)))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(again.CreatedAt).To(Equal(now))
		})

		It("round-trips a populated record", func() {
			rec := record.New("u1", now)
			src := "chat"
			rec.AppendFact(record.Fact{
				ID:        record.NewFactID("industry"),
				Category:  "industry",
				Value:     "fitness",
				Source:    &src,
				CreatedAt: now,
			})
			industry := "fitness"
			rec.Profile.Industry = &industry
			rec.Profile.TopConcerns = []string{"exclusivity"}
			rec.Profile.PreferredTerms = map[string]any{"requiresAdvancePayment": true}
			rec.Interactions = append(rec.Interactions, record.InteractionEvent{
				Type:      "contract_upload",
				Data:      map[string]any{"pages": float64(4)},
				Timestamp: now,
			})
			rec.History = append(rec.History, record.HistoryEntry{
				Type:      record.HistoryProfileEvolution,
				Changes:   map[string]record.FieldChange{"industry": {Old: nil, New: "fitness"}},
				Timestamp: now,
			})

			Expect(driver.Put(ctx, rec)).To(Succeed())

			got, err := driver.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rec))

			active, ok := got.ActiveFact("industry")
			Expect(ok).To(BeTrue())
			Expect(active.Value).To(Equal("fitness"))
		})

		It("overwrites on Put", func() {
			rec := record.New("u1", now)
			Expect(driver.Put(ctx, rec)).To(Succeed())

			rec.UpdatedAt = now.Add(time.Minute)
			rec.Interactions = append(rec.Interactions, record.InteractionEvent{Type: "ping", Timestamp: now})
			Expect(driver.Put(ctx, rec)).To(Succeed())

			got, err := driver.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UpdatedAt).To(Equal(now.Add(time.Minute)))
			Expect(got.Interactions).To(HaveLen(1))
		})

		It("hands out copies", func() {
			rec := record.New("u1", now)
			Expect(driver.Put(ctx, rec)).To(Succeed())

			got, err := driver.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			got.Interactions = append(got.Interactions, record.InteractionEvent{Type: "local"})
			rec.Interactions = append(rec.Interactions, record.InteractionEvent{Type: "local"})

			stored, err := driver.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Interactions).To(BeEmpty())
		})

		It("rejects nil records", func() {
			Expect(driver.Put(ctx, nil)).NotTo(Succeed())
			_, _, err := driver.CreateIfAbsent(ctx, nil)
			Expect(err).To(HaveOccurred())
		})

		It("lists user IDs in order", func() {
			for _, id := range []string{"charlie", "alice", "bob"} {
				_, _, err := driver.CreateIfAbsent(ctx, record.New(id, now))
				Expect(err).NotTo(HaveOccurred())
			}

			ids, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"alice", "bob", "charlie"}))
		})

		It("converges concurrent creators on one record", func() {
			const creators = 8

			var wg sync.WaitGroup
			var mu sync.Mutex
			createdCount := 0
			for i := 0; i < creators; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, ok, err := driver.CreateIfAbsent(ctx, record.New("shared", now.Add(time.Duration(i)*time.Second)))
					Expect(err).NotTo(HaveOccurred())
					if ok {
						mu.Lock()
						createdCount++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Expect(createdCount).To(Equal(1))
			ids, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"shared"}))
		})
	})
}
