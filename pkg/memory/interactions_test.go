package memory_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/storage/inmemory"
)

var _ = Describe("RecordInteraction", func() {
	var (
		ctx context.Context
		mgr *memory.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		mgr, err = memory.NewManager(memory.Config{Driver: inmemory.NewDriver(), Now: stepClock()})
		Expect(err).NotTo(HaveOccurred())
	})

	It("appends every interaction in call order", func() {
		const n = 5
		for i := 0; i < n; i++ {
			_, err := mgr.RecordInteraction(ctx, "u1", fmt.Sprintf("type-%d", i), map[string]any{"n": float64(i)})
			Expect(err).NotTo(HaveOccurred())
		}

		rec, err := mgr.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Interactions).To(HaveLen(n))
		for i, e := range rec.Interactions {
			Expect(e.Type).To(Equal(fmt.Sprintf("type-%d", i)))
			Expect(e.Data).To(Equal(map[string]any{"n": float64(i)}))
		}
		Expect(rec.UpdatedAt).To(Equal(rec.Interactions[n-1].Timestamp))
	})

	It("does not deduplicate or validate", func() {
		for i := 0; i < 2; i++ {
			_, err := mgr.RecordInteraction(ctx, "u1", "", nil)
			Expect(err).NotTo(HaveOccurred())
		}

		rec, err := mgr.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Interactions).To(HaveLen(2))
		Expect(rec.History).To(BeEmpty())
	})
})
