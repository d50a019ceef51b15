package memory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage/inmemory"
)

var _ = Describe("Recommend", func() {
	It("fires every matching rule in fixed order", func() {
		p := record.NewProfileSummary()
		p.TopConcerns = []string{"usage_rights", "exclusivity"}
		p.TypicalDealSize = ptr("<$500")

		recs := memory.Recommend(p)
		Expect(recs).To(HaveLen(3))
		Expect(recs[0].Type).To(Equal("tip"))
		Expect(recs[0].Priority).To(Equal("high"))
		Expect(recs[0].Message).To(ContainSubstring("exclusivity"))
		Expect(recs[1].Type).To(Equal("tip"))
		Expect(recs[1].Message).To(ContainSubstring("Usage rights"))
		Expect(recs[2].Type).To(Equal("warning"))
		Expect(recs[2].Priority).To(Equal("medium"))
	})

	It("returns an empty slice when nothing matches", func() {
		p := record.NewProfileSummary()
		p.TypicalDealSize = ptr("$10k+")
		p.TopConcerns = []string{"payment_terms"}

		recs := memory.Recommend(p)
		Expect(recs).NotTo(BeNil())
		Expect(recs).To(BeEmpty())
	})

	It("is deterministic", func() {
		p := record.NewProfileSummary()
		p.TopConcerns = []string{"exclusivity"}
		Expect(memory.Recommend(p)).To(Equal(memory.Recommend(p)))
	})

	Describe("Manager.Recommendations", func() {
		It("reads the current profile without mutating it", func() {
			ctx := context.Background()
			mgr, err := memory.NewManager(memory.Config{Driver: inmemory.NewDriver(), Now: stepClock()})
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.EvolveProfile(ctx, "u1", record.ProfileUpdate{"topConcerns": []string{"exclusivity"}})
			Expect(err).NotTo(HaveOccurred())
			before, err := mgr.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())

			recs, err := mgr.Recommendations(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))

			after, err := mgr.Get(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
		})
	})
})
