package resource_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/resource-accountant/common/scheduling/resource"
)

var _ = Describe("FixedPoint", func() {
	Describe("construction", func() {
		It("should build an exact representation of a whole number", func() {
			fp := resource.NewFixedPointFromInt(4)
			Expect(fp.IsWhole()).To(BeTrue())
			Expect(fp.Int64()).To(Equal(int64(4)))
			Expect(fp.IsZero()).To(BeFalse())
		})

		It("should build an exact representation of a fractional value", func() {
			fp := resource.NewFixedPointFromFloat(0.5)
			Expect(fp.IsWhole()).To(BeFalse())
			Expect(fp.Float64()).To(Equal(0.5))
		})

		It("should treat zero as zero regardless of construction path", func() {
			Expect(resource.NewFixedPointFromInt(0).IsZero()).To(BeTrue())
			Expect(resource.NewFixedPointFromFloat(0.0).IsZero()).To(BeTrue())
			Expect(resource.Zero.IsZero()).To(BeTrue())
		})

		It("should panic on a negative value", func() {
			Expect(func() { resource.NewFixedPointFromInt(-1) }).To(Panic())
			Expect(func() { resource.NewFixedPointFromFloat(-0.1) }).To(Panic())
		})
	})

	Describe("exact zero after repeated arithmetic", func() {
		It("should return to exactly zero after many adds and subtracts", func() {
			acc := resource.Zero
			delta := resource.NewFixedPointFromFloat(0.1)

			for i := 0; i < 1000; i++ {
				acc = acc.Add(delta)
			}
			for i := 0; i < 1000; i++ {
				acc = acc.Subtract(delta)
			}

			Expect(acc.IsZero()).To(BeTrue())
		})
	})

	Describe("comparisons", func() {
		It("should order values correctly", func() {
			a := resource.NewFixedPointFromFloat(0.25)
			b := resource.NewFixedPointFromFloat(0.75)

			Expect(a.LessThan(b)).To(BeTrue())
			Expect(b.GreaterThan(a)).To(BeTrue())
			Expect(a.LessThanOrEqual(a)).To(BeTrue())
			Expect(a.Equals(resource.NewFixedPointFromFloat(0.25))).To(BeTrue())
		})

		It("should compute Max and Min correctly", func() {
			a := resource.NewFixedPointFromInt(2)
			b := resource.NewFixedPointFromInt(5)

			Expect(a.Max(b).Equals(b)).To(BeTrue())
			Expect(a.Min(b).Equals(a)).To(BeTrue())
		})
	})

	Describe("ClampToZero", func() {
		It("should leave a non-negative value untouched", func() {
			a := resource.NewFixedPointFromInt(3)
			Expect(a.ClampToZero().Equals(a)).To(BeTrue())
		})

		It("should clamp a negative intermediate result to zero", func() {
			a := resource.NewFixedPointFromInt(1)
			b := resource.NewFixedPointFromInt(2)
			negative := a.Subtract(b)

			Expect(negative.IsNegative()).To(BeTrue())
			Expect(negative.ClampToZero().IsZero()).To(BeTrue())
		})
	})

	Describe("JSON round-trip", func() {
		It("should marshal and unmarshal back to an equal value", func() {
			original := resource.NewFixedPointFromFloat(12.3456)

			data, err := original.MarshalJSON()
			Expect(err).ToNot(HaveOccurred())

			var decoded resource.FixedPoint
			Expect(decoded.UnmarshalJSON(data)).To(Succeed())
			Expect(decoded.Equals(original)).To(BeTrue())
		})
	})
})
