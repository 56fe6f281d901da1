package sourcing_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"marketlens/internal/domain/supplier"
	"marketlens/internal/service/sourcing"
)

type fakeRepo struct {
	byKeyword map[string][]supplier.Supplier
	all       []supplier.Supplier
	err       error
	listCalls int
}

func (f *fakeRepo) FindByProductKeyword(ctx context.Context, keyword string) ([]supplier.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byKeyword[keyword], nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]supplier.Supplier, error) {
	f.listCalls++
	return f.all, f.err
}

func suppliers(n int) []supplier.Supplier {
	out := make([]supplier.Supplier, n)
	for i := range out {
		out[i] = supplier.Supplier{ID: int64(i + 1), Name: fmt.Sprintf("Supplier %d", i+1)}
	}
	return out
}

var _ = Describe("Matcher", func() {
	var (
		ctx  context.Context
		repo *fakeRepo
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &fakeRepo{byKeyword: map[string][]supplier.Supplier{}, all: suppliers(8)}
	})

	It("returns product matches as they are", func() {
		repo.byKeyword["coffee"] = repo.all[2:4]

		match, err := sourcing.NewMatcher(repo, nil).Match(ctx, " coffee ")

		Expect(err).NotTo(HaveOccurred())
		Expect(match.AIMatched).To(BeFalse())
		Expect(match.Suppliers).To(Equal(repo.all[2:4]))
		Expect(repo.listCalls).To(BeZero())
	})

	It("samples three to five distinct suppliers when nothing matches", func() {
		match, err := sourcing.NewMatcher(repo, nil).Match(ctx, "quantum yoga")

		Expect(err).NotTo(HaveOccurred())
		Expect(match.AIMatched).To(BeTrue())
		Expect(len(match.Suppliers)).To(BeNumerically(">=", 3))
		Expect(len(match.Suppliers)).To(BeNumerically("<=", 5))

		seen := map[int64]bool{}
		for _, s := range match.Suppliers {
			Expect(seen).NotTo(HaveKey(s.ID))
			seen[s.ID] = true
		}
	})

	It("returns an empty result for an empty repository", func() {
		repo.all = nil

		match, err := sourcing.NewMatcher(repo, nil).Match(ctx, "anything")

		Expect(err).NotTo(HaveOccurred())
		Expect(match.AIMatched).To(BeTrue())
		Expect(match.Suppliers).To(BeEmpty())
	})

	It("surfaces repository errors", func() {
		repo.err = errors.New("connection reset")

		_, err := sourcing.NewMatcher(repo, nil).Match(ctx, "coffee")
		Expect(err).To(MatchError(ContainSubstring("connection reset")))
	})

	Describe("Sample", func() {
		It("is reproducible per keyword", func() {
			Expect(sourcing.Sample(repo.all, "gym")).To(Equal(sourcing.Sample(repo.all, "gym")))
		})

		It("never exceeds the available suppliers", func() {
			Expect(sourcing.Sample(repo.all[:2], "gym")).To(HaveLen(2))
		})

		It("leaves the input untouched", func() {
			before := append([]supplier.Supplier(nil), repo.all...)
			sourcing.Sample(repo.all, "fashion")
			Expect(repo.all).To(Equal(before))
		})
	})
})
