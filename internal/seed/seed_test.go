package seed_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/seed"
)

func draw(keyword string, n int) []int {
	r := seed.New(keyword)
	out := make([]int, n)
	for i := range out {
		out[i] = seed.Between(r, 0, 1000)
	}
	return out
}

var _ = Describe("Seed", func() {
	Describe("Sum", func() {
		It("adds code points", func() {
			Expect(seed.Sum("Gym")).To(Equal(uint64('G' + 'y' + 'm')))
		})

		It("returns 0 for the empty string", func() {
			Expect(seed.Sum("")).To(BeZero())
		})

		It("counts runes, not bytes", func() {
			Expect(seed.Sum("é")).To(Equal(uint64(0xe9)))
		})
	})

	Describe("New", func() {
		It("produces identical streams for identical keywords", func() {
			Expect(draw("Gym", 20)).To(Equal(draw("Gym", 20)))
		})

		It("produces different streams for different sums", func() {
			Expect(draw("Gym", 20)).NotTo(Equal(draw("Fashion", 20)))
		})

		It("shares a stream between anagrams", func() {
			Expect(draw("listen", 10)).To(Equal(draw("silent", 10)))
		})

		It("handles the empty keyword", func() {
			Expect(draw("", 5)).To(Equal(draw("", 5)))
		})
	})

	Describe("Between", func() {
		It("stays within the closed interval", func() {
			r := seed.New("bounds")
			seen := map[int]bool{}
			for i := 0; i < 2000; i++ {
				v := seed.Between(r, 65, 98)
				Expect(v).To(BeNumerically(">=", 65))
				Expect(v).To(BeNumerically("<=", 98))
				seen[v] = true
			}
			Expect(seen).To(HaveKey(65))
			Expect(seen).To(HaveKey(98))
		})

		It("returns lo for a degenerate interval", func() {
			Expect(seed.Between(seed.New("x"), 7, 7)).To(Equal(7))
		})
	})

	Describe("Choice", func() {
		It("returns an element of the list", func() {
			items := []string{"Smart", "Eco", "Digital"}
			Expect(items).To(ContainElement(seed.Choice(seed.New("k"), items)))
		})

		It("returns empty for an empty list", func() {
			Expect(seed.Choice(seed.New("k"), nil)).To(BeEmpty())
		})
	})
})
