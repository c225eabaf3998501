// Package testing provides Ginkgo test helpers shared across this
// module's suites, grounded on the teacher's common/testing package.
package testing

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"

	"github.com/scusemua/resource-accountant/common/scheduling/resource"
)

// NodeSpoofer stands in for a real node's identity and resource state in
// tests that need a SchedulingResources/ResourceIdSet pair without
// standing up an actual accountant process, grounded on the teacher's
// ResourceSpoofer.
type NodeSpoofer struct {
	NodeID   string
	NodeName string

	Resources *resource.SchedulingResources
	Ids       *resource.ResourceIdSet

	snapshotID atomic.Int32
}

// NewNodeSpoofer constructs a NodeSpoofer whose total capacity is spec,
// keyed by name, with a matching identity pool sized off the same
// whole-unit quantities.
func NewNodeSpoofer(nodeName string, spec map[string]float64) *NodeSpoofer {
	total := resource.NewResourceSet()
	ids := resource.NewResourceIdSet()

	for name, qty := range spec {
		total.AddOrUpdate(name, resource.NewFixedPointFromFloat(qty))
		ids.AddOrUpdateResource(name, int64(qty))
	}

	spoofer := &NodeSpoofer{
		NodeID:    uuid.NewString(),
		NodeName:  nodeName,
		Resources: resource.NewSchedulingResources(total),
		Ids:       ids,
	}

	ginkgo.GinkgoWriter.Printf("created NodeSpoofer for %s (id=%s) with spec=%s\n",
		nodeName, spoofer.NodeID, total.String())

	return spoofer
}

// NextSnapshotID returns a monotonically-increasing id, for tests that
// need to assert ordering across repeated observations of the same
// spoofed node.
func (s *NodeSpoofer) NextSnapshotID() int32 {
	return s.snapshotID.Add(1)
}
