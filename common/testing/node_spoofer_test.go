package testing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/resource-accountant/common/scheduling/resource"
	nodetesting "github.com/scusemua/resource-accountant/common/testing"
)

var _ = Describe("NodeSpoofer", func() {
	It("should build a SchedulingResources and ResourceIdSet matching the given spec", func() {
		spoofer := nodetesting.NewNodeSpoofer("spoofed-node", map[string]float64{
			"cpu":    8,
			"memory": 4,
		})

		Expect(spoofer.NodeID).ToNot(BeEmpty())
		Expect(spoofer.Resources.GetTotalResources().GetResource("cpu").Equals(
			resource.NewFixedPointFromInt(8))).To(BeTrue())
		Expect(spoofer.Ids.ToResourceSet().GetResource("cpu").Equals(
			resource.NewFixedPointFromInt(8))).To(BeTrue())
	})

	It("should hand out strictly increasing snapshot ids", func() {
		spoofer := nodetesting.NewNodeSpoofer("spoofed-node", map[string]float64{"cpu": 4})

		first := spoofer.NextSnapshotID()
		second := spoofer.NextSnapshotID()

		Expect(second).To(Equal(first + 1))
	})
})
