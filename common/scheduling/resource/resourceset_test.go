package resource_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/resource-accountant/common/scheduling/resource"
)

func fp(f float64) resource.FixedPoint {
	return resource.NewFixedPointFromFloat(f)
}

var _ = Describe("ResourceSet", func() {
	var rs *resource.ResourceSet

	BeforeEach(func() {
		rs = resource.NewResourceSet()
	})

	Describe("positivity invariant", func() {
		It("should never store a zero or negative quantity", func() {
			rs.AddOrUpdate("cpu", fp(0))
			Expect(rs.GetResource("cpu").IsZero()).To(BeTrue())
			Expect(rs.IsEmpty()).To(BeTrue())
		})

		It("should store a strictly positive quantity", func() {
			rs.AddOrUpdate("cpu", fp(4))
			Expect(rs.IsEmpty()).To(BeFalse())
			Expect(rs.GetResource("cpu").Equals(fp(4))).To(BeTrue())
		})

		It("should panic on construction from a map with a non-positive entry", func() {
			Expect(func() {
				resource.NewResourceSetFromMap(map[string]resource.FixedPoint{"cpu": fp(0)})
			}).To(Panic())
		})
	})

	Describe("Subtract erasing zeroed entries", func() {
		It("should remove a key that lands on exactly zero", func() {
			rs.AddOrUpdate("cpu", fp(4))
			other := resource.NewResourceSet()
			other.AddOrUpdate("cpu", fp(4))

			rs.Subtract(other)

			Expect(rs.GetResource("cpu").IsZero()).To(BeTrue())
			Expect(rs.IsEmpty()).To(BeTrue())
		})

		It("should clamp at zero rather than go negative", func() {
			rs.AddOrUpdate("cpu", fp(2))
			other := resource.NewResourceSet()
			other.AddOrUpdate("cpu", fp(5))

			rs.Subtract(other)

			Expect(rs.GetResource("cpu").IsZero()).To(BeTrue())
		})
	})

	Describe("SubtractStrict", func() {
		It("should succeed when self has at least as much as other", func() {
			rs.AddOrUpdate("gpu", fp(2))
			other := resource.NewResourceSet()
			other.AddOrUpdate("gpu", fp(1))

			rs.SubtractStrict(other)

			Expect(rs.GetResource("gpu").Equals(fp(1))).To(BeTrue())
		})

		It("should panic when other references a resource self does not have", func() {
			other := resource.NewResourceSet()
			other.AddOrUpdate("gpu", fp(1))

			Expect(func() { rs.SubtractStrict(other) }).To(Panic())
		})

		It("should panic on underflow", func() {
			rs.AddOrUpdate("gpu", fp(1))
			other := resource.NewResourceSet()
			other.AddOrUpdate("gpu", fp(2))

			Expect(func() { rs.SubtractStrict(other) }).To(Panic())
		})
	})

	Describe("AddCapped", func() {
		It("should cap the sum at the corresponding total entry", func() {
			rs.AddOrUpdate("cpu", fp(6))
			total := resource.NewResourceSet()
			total.AddOrUpdate("cpu", fp(8))
			other := resource.NewResourceSet()
			other.AddOrUpdate("cpu", fp(5))

			rs.AddCapped(other, total)

			Expect(rs.GetResource("cpu").Equals(fp(8))).To(BeTrue())
		})

		It("should silently drop a key absent from total", func() {
			total := resource.NewResourceSet()
			other := resource.NewResourceSet()
			other.AddOrUpdate("ghost", fp(5))

			rs.AddCapped(other, total)

			Expect(rs.GetResource("ghost").IsZero()).To(BeTrue())
		})
	})

	Describe("subset/superset/equality", func() {
		It("should treat equal sets as mutual subsets", func() {
			a := resource.NewResourceSet()
			a.AddOrUpdate("cpu", fp(4))
			b := resource.NewResourceSet()
			b.AddOrUpdate("cpu", fp(4))

			Expect(a.Equals(b)).To(BeTrue())
			Expect(a.IsSubset(b)).To(BeTrue())
			Expect(a.IsSuperset(b)).To(BeTrue())
		})

		It("should detect a strict subset", func() {
			small := resource.NewResourceSet()
			small.AddOrUpdate("cpu", fp(2))
			big := resource.NewResourceSet()
			big.AddOrUpdate("cpu", fp(4))

			Expect(small.IsSubset(big)).To(BeTrue())
			Expect(big.IsSubset(small)).To(BeFalse())
			Expect(small.Equals(big)).To(BeFalse())
		})
	})

	Describe("Copy", func() {
		It("should produce a value-independent snapshot", func() {
			rs.AddOrUpdate("cpu", fp(4))
			clone := rs.Copy()

			rs.AddOrUpdate("cpu", fp(100))

			Expect(clone.GetResource("cpu").Equals(fp(4))).To(BeTrue())
		})
	})

	Describe("String", func() {
		It("should render entries in sorted order regardless of insertion order", func() {
			rs.AddOrUpdate("gpu", fp(1))
			rs.AddOrUpdate("cpu", fp(2))

			Expect(rs.String()).To(Equal("ResourceSet[cpu=2.0000, gpu=1.0000]"))
		})
	})

	Describe("MarshalJSON/UnmarshalJSON", func() {
		It("should round-trip every entry through JSON", func() {
			rs.AddOrUpdate("cpu", fp(2))
			rs.AddOrUpdate("gpu", fp(1))

			data, err := rs.MarshalJSON()
			Expect(err).ToNot(HaveOccurred())

			decoded := resource.NewResourceSet()
			Expect(decoded.UnmarshalJSON(data)).To(Succeed())

			Expect(decoded.Equals(rs)).To(BeTrue())
		})
	})
})
