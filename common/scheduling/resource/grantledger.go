package resource

import (
	"fmt"

	"github.com/scusemua/resource-accountant/common/utils/hashmap"
)

// grant is what the ledger remembers about a single outstanding Acquire:
// enough to hand the exact aggregate ResourceSet and ResourceIdSet back to
// Release without asking the caller to keep hold of either.
type grant struct {
	aggregate *ResourceSet
	ids       *ResourceIdSet
}

// GrantLedger tracks, per opaque task id, what a SchedulingResources /
// ResourceIdSet pair most recently granted that task. It generalizes the
// teacher's allocationKernelReplicaMap: rather than requiring every caller
// to remember the ResourceIdSet it was handed, Acquire records it here, and
// Release looks it back up by task id. It does not change ResourceIdSet's
// own Acquire/Release contract; it is a convenience layer one level above,
// the way an allocation manager sits above the pools it manages.
type GrantLedger struct {
	grants *hashmap.CornelkMap[string, *grant]
}

// NewGrantLedger constructs an empty GrantLedger sized for an expected
// number of concurrently outstanding grants.
func NewGrantLedger(expectedSize int) *GrantLedger {
	return &GrantLedger{
		grants: hashmap.NewCornelkMap[string, *grant](expectedSize),
	}
}

// Acquire debits req from both resources (the aggregate accounting) and
// ids (the identity-preserving pools), and records what was granted under
// taskID so a later Release(taskID) can find it. A taskID that already has
// an outstanding grant is a programming error and is fatal -- the caller
// must release before re-acquiring under the same id.
func (l *GrantLedger) Acquire(taskID string, resources *SchedulingResources, ids *ResourceIdSet, req *ResourceSet) *ResourceIdSet {
	if _, exists := l.grants.Load(taskID); exists {
		fatalf("resource: GrantLedger.Acquire: task %q already has an outstanding grant", taskID)
	}

	grantedIDs := ids.Acquire(req)
	resources.Acquire(req)

	l.grants.Store(taskID, &grant{aggregate: req.Copy(), ids: grantedIDs})

	return grantedIDs
}

// Release looks up the grant recorded for taskID and releases it back into
// both resources and ids. Releasing an unknown taskID is a soft condition:
// it is logged at debug level and is a no-op, mirroring ReleaseConstrained's
// tolerance of a grant whose target no longer exists.
func (l *GrantLedger) Release(taskID string, resources *SchedulingResources, ids *ResourceIdSet) {
	g, ok := l.grants.LoadAndDelete(taskID)
	if !ok {
		log.Debug("resource: GrantLedger.Release: no outstanding grant for task %q", taskID)
		return
	}

	ids.Release(g.ids)
	resources.Release(g.aggregate)
}

// Peek returns the aggregate ResourceSet most recently granted to taskID,
// without releasing it.
func (l *GrantLedger) Peek(taskID string) (*ResourceSet, bool) {
	g, ok := l.grants.Load(taskID)
	if !ok {
		return nil, false
	}
	return g.aggregate.Copy(), true
}

// Len returns the number of outstanding grants.
func (l *GrantLedger) Len() int {
	return l.grants.Len()
}

// String renders a brief summary of outstanding grant count, for logging.
func (l *GrantLedger) String() string {
	return fmt.Sprintf("GrantLedger[%d outstanding grants]", l.Len())
}
