package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/creatormem/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("formats sub-second durations in milliseconds", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("formats longer durations in seconds", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("returns the success mark for nil", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		})

		It("returns the fail mark for an error", func() {
			Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("returns the error from fn and prints the message", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "loading record", func() error {
				return errors.New("unreachable")
			})
			Expect(err).To(MatchError("unreachable"))
			Expect(buf.String()).To(ContainSubstring("loading record"))
		})
	})

	Describe("KeyValue", func() {
		It("renders unset values as <not set>", func() {
			var buf bytes.Buffer
			cliui.KeyValue(&buf, "industry", "")
			Expect(buf.String()).To(ContainSubstring("<not set>"))
		})

		It("renders set values", func() {
			var buf bytes.Buffer
			cliui.KeyValue(&buf, "industry", "fitness")
			Expect(buf.String()).To(ContainSubstring("fitness"))
		})
	})
})
