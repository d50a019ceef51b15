package inspectcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/api"
	"github.com/papercomputeco/creatormem/pkg/record"
)

func sampleResponse() api.GetResponse {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := record.New("u1", now)

	fitness := "fitness"
	rec.Profile.Industry = &fitness
	rec.Profile.TopConcerns = []string{"exclusivity"}

	source := "onboarding"
	rec.Facts = append(rec.Facts,
		record.Fact{ID: "industry_1", Category: "industry", Value: "lifestyle", CreatedAt: now, Superseded: true},
		record.Fact{ID: "industry_2", Category: "industry", Value: "fitness", Source: &source, CreatedAt: now},
	)
	rec.Interactions = append(rec.Interactions, record.InteractionEvent{
		Type:      "contract_upload",
		Data:      map[string]any{"brand": "Acme"},
		Timestamp: now,
	})
	rec.History = append(rec.History, record.HistoryEntry{
		Type:       record.HistoryFactConflict,
		Timestamp:  now,
		Category:   "industry",
		Old:        "lifestyle",
		New:        "fitness",
		Resolution: record.ResolutionSuperseded,
	})

	return api.GetResponse{
		User: rec,
		Recommendations: []record.Recommendation{
			{Type: "tip", Message: "Negotiate exclusivity windows.", Priority: "high"},
		},
	}
}

var _ = Describe("inspectCommander", func() {
	var (
		server   *httptest.Server
		cmder    *inspectCommander
		out      *bytes.Buffer
		gotQuery string
		status   int
	)

	BeforeEach(func() {
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal(api.UserMemoryPath))
			gotQuery = r.URL.Query().Get("userId")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "mock storage failure"})
				return
			}
			_ = json.NewEncoder(w).Encode(sampleResponse())
		}))

		cmder = &inspectCommander{
			apiTarget: server.URL,
			client:    server.Client(),
		}
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		server.Close()
	})

	It("renders the active facts, profile and interactions", func() {
		Expect(cmder.run(context.Background(), out, "u1")).To(Succeed())
		Expect(gotQuery).To(Equal("u1"))

		text := out.String()
		Expect(text).To(ContainSubstring("u1"))
		Expect(text).To(ContainSubstring("fitness"))
		Expect(text).To(ContainSubstring("from onboarding"))
		Expect(text).NotTo(ContainSubstring("lifestyle"))
		Expect(text).To(ContainSubstring("contract_upload"))
		Expect(text).To(ContainSubstring("exclusivity"))
	})

	It("includes superseded facts and history with --all", func() {
		cmder.showAll = true
		Expect(cmder.run(context.Background(), out, "u1")).To(Succeed())

		text := out.String()
		Expect(text).To(ContainSubstring("lifestyle"))
		Expect(text).To(ContainSubstring("superseded"))
		Expect(text).To(ContainSubstring(record.HistoryFactConflict))
	})

	It("prints the raw response with --json", func() {
		cmder.raw = true
		Expect(cmder.run(context.Background(), out, "u1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(`"userId":"u1"`))
	})

	It("escapes the user id", func() {
		Expect(cmder.run(context.Background(), out, "a b&c")).To(Succeed())
		Expect(gotQuery).To(Equal("a b&c"))
	})

	It("surfaces server errors", func() {
		status = http.StatusInternalServerError
		err := cmder.run(context.Background(), out, "u1")
		Expect(err).To(MatchError(ContainSubstring("HTTP 500: mock storage failure")))
	})

	It("fails when the server is unreachable", func() {
		server.Close()
		err := cmder.run(context.Background(), out, "u1")
		Expect(err).To(MatchError(ContainSubstring("fetching user memory")))
	})
})

var _ = Describe("formatting helpers", func() {
	It("truncates long values", func() {
		long := ""
		for range 100 {
			long += "x"
		}
		Expect(formatValue(long)).To(HaveLen(maxValueLen + 3))
	})

	It("encodes non-string values as JSON", func() {
		Expect(formatValue(map[string]any{"a": 1})).To(Equal(`{"a":1}`))
		Expect(formatValue(nil)).To(Equal("null"))
	})

	It("keeps the last five interactions", func() {
		events := make([]record.InteractionEvent, 8)
		for i := range events {
			events[i].Type = string(rune('a' + i))
		}
		Expect(recent(events, false)).To(HaveLen(5))
		Expect(recent(events, false)[0].Type).To(Equal("d"))
		Expect(recent(events, true)).To(HaveLen(8))
	})

	It("renders recommendations as a markdown list", func() {
		md := recommendationsMarkdown([]record.Recommendation{{Type: "tip", Priority: "high", Message: "m"}})
		Expect(md).To(ContainSubstring("- **tip** (high): m"))
	})
})
