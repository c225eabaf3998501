package resource

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// MemoryLabel is the resource-name prefix treated as memory for textual
// rendering purposes only; any key beginning with this label, plus the
// exact name ObjectStoreMemoryLabel, is rendered in GiB rather than as a
// bare decimal.
const MemoryLabel = "memory"

// ObjectStoreMemoryLabel is the canonical name for object-store memory,
// rendered the same way as any other memory-family resource.
const ObjectStoreMemoryLabel = "object_store_memory"

// DefaultMemoryBlockSizeMiB is the default size, in MiB, of one stored unit
// of a memory-family resource. The renderer computes q * blockSize / 1024
// to produce GiB. This is a configurable value (see
// configuration.AccountantOptions.MemoryBlockSizeMiB), not a constant,
// since an adopter may declare memory resources in a different block size.
const DefaultMemoryBlockSizeMiB = 50

// ResourceObserver receives callbacks on every Acquire, Release,
// UpdateResourceCapacity, AddResource and DeleteResource of a
// SchedulingResources (the Set*Resources setters do not notify it), letting
// an external metrics surface (such as metrics.Manager, which satisfies
// this interface) stay in
// sync without this package importing any metrics library -- the same
// inversion DebugStringer uses on the metrics side.
type ResourceObserver interface {
	ObserveCapacityUpdate(name string, createdBacklog bool)
	ObserveAddResource(name string)
	ObserveDeleteResource(name string)
	PublishSnapshot(total, available, load map[string]float64)
}

// SchedulingResources is the node's top-level resource record: a triple of
// ResourceSets (total, available, load) plus a normal_task_usage view used
// only for reporting. It is the data structure a node's scheduler mutates
// when a task is admitted, completes, fails, or the cluster reconfigures
// the node's capacity online.
type SchedulingResources struct {
	total              *ResourceSet
	available          *ResourceSet
	load               *ResourceSet
	normalTaskUsage    *ResourceSet
	memoryBlockSizeMiB int64

	observer ResourceObserver

	// generation is bumped by every mutating operation. It gives an
	// external replication/debugging layer a cheap way to detect that this
	// record has changed since it was last observed; this package does not
	// implement that replication layer itself.
	generation atomic.Int64
}

// NewSchedulingResources constructs a SchedulingResources whose total and
// available both start out equal to initial (a defensive copy is taken),
// with an empty load and an empty normal_task_usage.
func NewSchedulingResources(initial *ResourceSet) *SchedulingResources {
	return &SchedulingResources{
		total:              initial.Copy(),
		available:          initial.Copy(),
		load:               NewResourceSet(),
		normalTaskUsage:    NewResourceSet(),
		memoryBlockSizeMiB: DefaultMemoryBlockSizeMiB,
	}
}

// SetObserver attaches o to receive a callback on every subsequent
// Acquire, Release, UpdateResourceCapacity, AddResource and DeleteResource;
// the Set*Resources setters do not notify it. A SchedulingResources with no observer attached behaves
// exactly as if this method were never called.
func (s *SchedulingResources) SetObserver(o ResourceObserver) {
	s.observer = o
}

// PublishSnapshot pushes the current total/available/load quantities to
// the attached observer, if any. Acquire/Release/UpdateResourceCapacity/
// AddResource/DeleteResource already call this after every mutation; an
// owner may also call it directly on a timer (see
// configuration.AccountantOptions.PrometheusInterval) so a freshly
// attached observer's gauges are not empty until the next mutation.
func (s *SchedulingResources) PublishSnapshot() {
	s.notifyObserver()
}

func (s *SchedulingResources) notifyObserver() {
	if s.observer == nil {
		return
	}
	s.observer.PublishSnapshot(toFloatMap(s.total), toFloatMap(s.available), toFloatMap(s.load))
}

func toFloatMap(rs *ResourceSet) map[string]float64 {
	m := rs.GetResourceMap()
	out := make(map[string]float64, len(m))
	for name, qty := range m {
		out[name] = qty.Float64()
	}
	return out
}

// SetMemoryBlockSizeMiB overrides the block size used to render
// memory-family resources in DebugString. See
// configuration.AccountantOptions.MemoryBlockSizeMiB.
func (s *SchedulingResources) SetMemoryBlockSizeMiB(sizeMiB int64) {
	s.memoryBlockSizeMiB = sizeMiB
}

// Generation returns the current generation counter.
func (s *SchedulingResources) Generation() int64 {
	return s.generation.Load()
}

func (s *SchedulingResources) bumpGeneration() {
	s.generation.Add(1)
}

// GetTotalResources returns a copy of the total ResourceSet.
func (s *SchedulingResources) GetTotalResources() *ResourceSet {
	return s.total.Copy()
}

// SetTotalResources replaces the total ResourceSet with a copy of r.
func (s *SchedulingResources) SetTotalResources(r *ResourceSet) {
	s.total = r.Copy()
	s.bumpGeneration()
}

// GetAvailableResources returns a copy of the available ResourceSet.
func (s *SchedulingResources) GetAvailableResources() *ResourceSet {
	return s.available.Copy()
}

// SetAvailableResources replaces the available ResourceSet with a copy of r.
func (s *SchedulingResources) SetAvailableResources(r *ResourceSet) {
	s.available = r.Copy()
	s.bumpGeneration()
}

// GetLoadResources returns a copy of the load ResourceSet. load is a
// passive value: it is never touched by Acquire/Release, only by the owner
// calling SetLoadResources.
func (s *SchedulingResources) GetLoadResources() *ResourceSet {
	return s.load.Copy()
}

// SetLoadResources replaces the load ResourceSet with a copy of r.
func (s *SchedulingResources) SetLoadResources(r *ResourceSet) {
	s.load = r.Copy()
	s.bumpGeneration()
}

// GetNormalTaskResources returns a copy of the normal_task_usage
// ResourceSet.
func (s *SchedulingResources) GetNormalTaskResources() *ResourceSet {
	return s.normalTaskUsage.Copy()
}

// SetNormalTaskResources replaces the normal_task_usage ResourceSet with a
// copy of r. This is a passive field, included in DebugString after being
// subtracted from available to display the "really free" view.
func (s *SchedulingResources) SetNormalTaskResources(r *ResourceSet) {
	s.normalTaskUsage = r.Copy()
	s.bumpGeneration()
}

// Acquire debits req from available. req must be held -- this is the
// strict path, and a violation (acquiring what was never there) is a
// programming error and is fatal.
func (s *SchedulingResources) Acquire(req *ResourceSet) {
	s.available.SubtractStrict(req)
	s.bumpGeneration()
	s.notifyObserver()
	log.Debug("resource: Acquire: %s", req)
}

// SafeAcquire attempts Acquire, recovering any panic and returning it as an
// error instead. Use this at a boundary that must not crash the process on
// a caller mistake (e.g. a request arriving over RPC); the core's own
// invariant-violation panics are otherwise intentionally fatal.
func (s *SchedulingResources) SafeAcquire(req *ResourceSet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resource: SafeAcquire: %v", r)
		}
	}()

	s.Acquire(req)
	return nil
}

// Release credits req back into available, clamped at total: unknown keys
// are logged and dropped rather than erroring.
func (s *SchedulingResources) Release(req *ResourceSet) {
	s.available.AddCapped(req, s.total)
	s.bumpGeneration()
	s.notifyObserver()
	log.Debug("resource: Release: %s", req)
}

// UpdateResourceCapacity reconfigures a single resource's declared
// capacity. If the resource already exists in total with capacity c > 0,
// available is adjusted by the same delta (clamped at 0), total is set to
// newCap and available to the adjusted value. If the resource is absent, both total
// and available are simply set to newCap. load is never touched by this
// operation.
func (s *SchedulingResources) UpdateResourceCapacity(name string, newCap int64) {
	if newCap < 0 {
		fatalf("resource: UpdateResourceCapacity: %v", ErrNegativeCapacity)
	}

	newCapFP := NewFixedPointFromInt(newCap)
	current := s.total.GetResource(name)

	var updatedAvailable FixedPoint
	var createdBacklog bool
	if !current.IsZero() {
		delta := newCapFP.Subtract(current)
		raw := s.available.GetResource(name).Add(delta)
		// A shrink that would have taken availability below zero could not
		// be fully absorbed -- the aggregate-level analogue of the
		// identity-pool decrement backlog ResourceIds tracks explicitly.
		createdBacklog = raw.IsNegative()
		updatedAvailable = raw.ClampToZero()
	} else {
		updatedAvailable = newCapFP
	}

	// AddOrUpdate silently no-ops on a non-positive value (the positivity
	// invariant), so a capacity or availability that lands on exactly zero
	// must be removed explicitly rather than "set" to zero.
	if newCapFP.IsZero() {
		s.total.Delete(name)
	} else {
		s.total.AddOrUpdate(name, newCapFP)
	}

	if updatedAvailable.IsZero() {
		s.available.Delete(name)
	} else {
		s.available.AddOrUpdate(name, updatedAvailable)
	}

	s.bumpGeneration()

	if s.observer != nil {
		s.observer.ObserveCapacityUpdate(name, createdBacklog)
	}
	s.notifyObserver()
}

// DeleteResource removes name from total, available, and load.
func (s *SchedulingResources) DeleteResource(name string) {
	s.total.Delete(name)
	s.available.Delete(name)
	s.load.Delete(name)
	s.bumpGeneration()

	if s.observer != nil {
		s.observer.ObserveDeleteResource(name)
	}
	s.notifyObserver()
}

// AddResource outer-joins extra into both total and available. Intended
// for synthetic resources -- placement-group tokens and similar -- that did
// not exist at node startup.
func (s *SchedulingResources) AddResource(extra *ResourceSet) {
	s.total.AddOuterJoin(extra)
	s.available.AddOuterJoin(extra)
	s.bumpGeneration()

	if s.observer != nil {
		for name := range extra.resources {
			s.observer.ObserveAddResource(name)
		}
	}
	s.notifyObserver()
}

// isMemoryResource reports whether name belongs to the memory family for
// textual-rendering purposes only.
func isMemoryResource(name string) bool {
	return name == ObjectStoreMemoryLabel || strings.HasPrefix(name, MemoryLabel)
}

// renderQuantity renders q according to name's resource family: memory
// resources render as GiB (q * blockSizeMiB / 1024); every other resource
// renders as a bare decimal.
func (s *SchedulingResources) renderQuantity(name string, q FixedPoint) string {
	if !isMemoryResource(name) {
		return q.String()
	}

	gib := q.Decimal().Mul(decimalFromInt64(s.memoryBlockSizeMiB)).Div(decimalFromInt64(1024))
	return gib.StringFixed(4) + "GiB"
}

func (s *SchedulingResources) renderResourceSet(rs *ResourceSet) string {
	names := make([]string, 0, len(rs.resources))
	for name := range rs.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+s.renderQuantity(name, rs.resources[name]))
	}

	return strings.Join(parts, ", ")
}

// DebugString renders three lines: total, avail (available minus
// normal_task_usage, clamped at zero), and the normal task usage itself.
// Memory-family resources render in GiB; every other resource renders as a
// bare decimal.
func (s *SchedulingResources) DebugString() string {
	reallyAvailable := s.available.Copy()
	reallyAvailable.Subtract(s.normalTaskUsage)

	var b strings.Builder
	fmt.Fprintf(&b, "total: %s\n", s.renderResourceSet(s.total))
	fmt.Fprintf(&b, "avail: %s\n", s.renderResourceSet(reallyAvailable))
	fmt.Fprintf(&b, "normal task usage: %s\n", s.renderResourceSet(s.normalTaskUsage))

	return b.String()
}

// String renders a brief single-line summary, distinct from DebugString's
// multi-line operator view.
func (s *SchedulingResources) String() string {
	return fmt.Sprintf("SchedulingResources[total=%s, available=%s, load=%s]", s.total, s.available, s.load)
}
