package resolve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/hr-management/internal/core/common/resolve"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestResolve(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Resolve Suite")
}

func hit(v string) resolve.LookupFunc[string] {
	return func(context.Context) (string, bool, error) { return v, true, nil }
}

func miss() resolve.LookupFunc[string] {
	return func(context.Context) (string, bool, error) { return "", false, nil }
}

var _ = Describe("First", func() {
	ctx := context.Background()

	It("returns the first hit in order", func() {
		v, src, err := resolve.First(ctx,
			resolve.From(resolve.SourceDatabase, miss()),
			resolve.From(resolve.SourceRegistry, hit("/registry")),
			resolve.From(resolve.SourceLegacy, hit("/legacy")),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("/registry"))
		Expect(src).To(Equal(resolve.SourceRegistry))
	})

	It("reports none when every source misses", func() {
		v, src, err := resolve.First(ctx,
			resolve.From(resolve.SourceDatabase, miss()),
			resolve.From(resolve.SourceLegacy, miss()),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeEmpty())
		Expect(src).To(Equal(resolve.SourceNone))
	})

	It("stops at the first error", func() {
		called := false
		_, src, err := resolve.First(ctx,
			resolve.From(resolve.SourceDatabase, func(context.Context) (string, bool, error) {
				return "", false, errors.New("db down")
			}),
			resolve.From(resolve.SourceRegistry, func(context.Context) (string, bool, error) {
				called = true
				return "x", true, nil
			}),
		)
		Expect(err).To(MatchError("db down"))
		Expect(src).To(Equal(resolve.SourceDatabase))
		Expect(called).To(BeFalse())
	})

	It("skips nil lookups", func() {
		v, src, err := resolve.First(ctx,
			resolve.Candidate[string]{Source: resolve.SourceDatabase},
			resolve.From(resolve.SourceDefault, hit("fallback")),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("fallback"))
		Expect(src).To(Equal(resolve.SourceDefault))
	})
})
