package utils

import (
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		result := Truncate("this is a long string", 10)
		Expect(result).To(Equal("this is a ..."))
	})

	It("never splits a multi-byte character", func() {
		result := Truncate("créatrice de contenu", 3)
		Expect(result).To(Equal("cré..."))
		Expect(utf8.ValidString(result)).To(BeTrue())
	})

	It("counts accented characters as one cell", func() {
		Expect(Truncate("créatrice", 9)).To(Equal("créatrice"))
	})
})
