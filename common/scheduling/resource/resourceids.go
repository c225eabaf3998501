package resource

import (
	"github.com/goccy/go-json"

	"github.com/scusemua/resource-accountant/common/queue"
	"github.com/scusemua/resource-accountant/common/stack"
)

// DynamicSlotID is the sentinel slot id used exclusively for dynamically
// added capacity -- slots not tied to a physical identity (e.g. capacity
// that was not part of the node's initial hardware enumeration). The
// accounting never attempts to distinguish one dynamic slot from another.
const DynamicSlotID int64 = -1

// fractionalSlot pairs a slot id with its remaining fraction. The residual
// always lies in the open interval (0, 1); a residual that reaches 0 or 1
// is never stored as a fractionalSlot -- it is removed or promoted back to
// a whole id, respectively.
type fractionalSlot struct {
	id       int64
	residual FixedPoint
}

// ResourceIds is the identity-preserving slot pool for a single resource
// name (e.g. "CPU"). It tracks which integer slot ids are free as whole
// units, which are partially granted, the resource's declared capacity,
// and a backlog of whole units owed to a pending capacity decrease that
// could not be satisfied immediately because the pool was fully in use.
//
// whole_ids is a LIFO stack (acquisition pops the tail) purely for
// deterministic ordering; fractional_ids is scanned front to back for
// first-fit, and a debit or a merge rotates it, so its order is deterministic
// but not insertion order. Neither order carries semantic weight beyond
// determinism.
type ResourceIds struct {
	wholeIDs         *stack.Stack[int64]
	fractionalIDs    *queue.Fifo[fractionalSlot]
	totalCapacity    FixedPoint
	decrementBacklog int64
}

// NewResourceIds constructs a ResourceIds pool with capacity whole slots,
// numbered 0..capacity-1, all initially free.
func NewResourceIds(capacity int64) *ResourceIds {
	if capacity < 0 {
		fatalf("resource: NewResourceIds: %v", ErrNegativeCapacity)
	}

	r := &ResourceIds{
		wholeIDs:      &stack.Stack[int64]{},
		fractionalIDs: queue.NewFifo[fractionalSlot](0),
		totalCapacity: NewFixedPointFromInt(capacity),
	}

	for i := int64(0); i < capacity; i++ {
		r.wholeIDs.Push(i)
	}

	return r
}

// TotalQuantity returns whole + sum(fractional residuals), the amount of
// this resource actually present and unallocated (or allocated, if this
// ResourceIds is the result of an Acquire) in the pool right now.
func (r *ResourceIds) TotalQuantity() FixedPoint {
	total := NewFixedPointFromInt(int64(r.wholeIDs.Size()))

	r.fractionalIDs.Range(func(f fractionalSlot) {
		total = total.Add(f.residual)
	})

	return total
}

// DecrementBacklog returns the current decrement backlog.
func (r *ResourceIds) DecrementBacklog() int64 {
	return r.decrementBacklog
}

// TotalCapacity returns the declared capacity.
func (r *ResourceIds) TotalCapacity() FixedPoint {
	return r.totalCapacity
}

// IsEmpty returns true iff the pool holds no whole ids and no fractional
// ids -- the ResourceIdSet invariant for removing a key.
func (r *ResourceIds) IsEmpty() bool {
	return r.wholeIDs.IsEmpty() && r.fractionalIDs.Len() == 0
}

// Contains reports whether the pool can currently satisfy a request for q.
// If q >= 1, q must be a whole number (fatal otherwise) and Contains is
// true iff at least q whole ids are free. If 0 < q < 1, Contains is true
// iff any whole id exists (it can be split) or any fractional residual is
// already >= q.
func (r *ResourceIds) Contains(q FixedPoint) bool {
	if q.GreaterThanOrEqual(NewFixedPointFromInt(1)) {
		if !q.IsWhole() {
			fatalf("resource: Contains: %v: %s", ErrNotWholeQuantity, q)
		}

		return int64(r.wholeIDs.Size()) >= q.Int64()
	}

	if q.IsZero() {
		return true
	}

	if !r.wholeIDs.IsEmpty() {
		return true
	}

	found := false
	r.fractionalIDs.Range(func(f fractionalSlot) {
		if !found && f.residual.GreaterThanOrEqual(q) {
			found = true
		}
	})

	return found
}

// Acquire removes q worth of this resource from the pool and returns it as
// a freshly owned ResourceIds. Acquiring more than Contains permits is a
// programming error and is fatal -- callers must gate every Acquire on
// Contains.
func (r *ResourceIds) Acquire(q FixedPoint) *ResourceIds {
	if !r.Contains(q) {
		fatalf("resource: Acquire: %v: requested %s", ErrResourceUnavailable, q)
	}

	granted := &ResourceIds{
		wholeIDs:      &stack.Stack[int64]{},
		fractionalIDs: queue.NewFifo[fractionalSlot](0),
	}

	if q.GreaterThanOrEqual(NewFixedPointFromInt(1)) {
		n := q.Int64()
		for i := int64(0); i < n; i++ {
			id, err := r.wholeIDs.Pop()
			if err != nil {
				fatalf("resource: Acquire: whole pool exhausted mid-acquire: %v", err)
			}
			granted.wholeIDs.Push(id)
		}
		return granted
	}

	if q.IsZero() {
		return granted
	}

	if r.debitFirstFitFractional(q, granted) {
		return granted
	}

	// No existing fractional entry has sufficient residual; split a whole id.
	id, err := r.wholeIDs.Pop()
	if err != nil {
		fatalf("resource: Acquire: %v", err)
	}
	r.assertNotFractional(id)

	granted.fractionalIDs.Enqueue(fractionalSlot{id: id, residual: q})

	remainder := NewFixedPointFromInt(1).Subtract(q)
	if !remainder.IsZero() {
		r.fractionalIDs.Enqueue(fractionalSlot{id: id, residual: remainder})
	}

	return granted
}

// assertNotFractional panics with ErrDuplicateSlotID if id is already
// present in fractionalIDs. A slot id popped fresh off wholeIDs must not
// simultaneously appear as a fractional entry -- the two sets are disjoint
// by construction, so finding id in both means the pool's bookkeeping has
// been corrupted by a prior bug.
func (r *ResourceIds) assertNotFractional(id int64) {
	duplicate := false
	r.fractionalIDs.Range(func(f fractionalSlot) {
		if f.id == id {
			duplicate = true
		}
	})
	if duplicate {
		fatalf("resource: %v: slot %d", ErrDuplicateSlotID, id)
	}
}

// debitFirstFitFractional scans fractionalIDs in order for the first entry
// whose residual >= q, debits it by q, and enqueues the debited (id, q)
// pair into granted. Returns false if no such entry exists, leaving r
// untouched.
func (r *ResourceIds) debitFirstFitFractional(q FixedPoint, granted *ResourceIds) bool {
	remaining := r.fractionalIDs.Len()
	for i := 0; i < remaining; i++ {
		f, ok := r.fractionalIDs.Dequeue()
		if !ok {
			break
		}

		if f.residual.GreaterThanOrEqual(q) {
			granted.fractionalIDs.Enqueue(fractionalSlot{id: f.id, residual: q})

			newResidual := f.residual.Subtract(q)
			if !newResidual.IsZero() {
				r.fractionalIDs.Enqueue(fractionalSlot{id: f.id, residual: newResidual})
			}

			// Every entry after index i in the original sequence was never
			// dequeued and now sits at the front of the queue, ahead of the
			// entries re-enqueued above and of the debited remainder, so the
			// queue ends up rotated rather than in its original order.
			return true
		}

		r.fractionalIDs.Enqueue(f)
	}

	return false
}

// Release merges a previously Acquired (or externally constructed)
// ResourceIds back into this pool, per the release algorithm: whole ids
// pay down any outstanding decrement backlog first; fractional ids merge
// into existing partials (or are appended), promoting back to a whole id
// when a merge reaches exactly 1.
func (r *ResourceIds) Release(granted *ResourceIds) {
	n := int64(granted.wholeIDs.Size())
	if n > 0 {
		if n > r.decrementBacklog {
			toAbsorb := r.decrementBacklog
			r.decrementBacklog = 0

			for i := int64(0); i < n; i++ {
				id, err := granted.wholeIDs.Pop()
				if err != nil {
					fatalf("resource: Release: %v", err)
				}

				if i < toAbsorb {
					continue // discarded to satisfy the pending shrink
				}

				r.wholeIDs.Push(id)
			}
		} else {
			r.decrementBacklog -= n
			// all n ids are discarded against the backlog
			for i := int64(0); i < n; i++ {
				if _, err := granted.wholeIDs.Pop(); err != nil {
					fatalf("resource: Release: %v", err)
				}
			}
		}
	}

	fracLen := granted.fractionalIDs.Len()
	for i := 0; i < fracLen; i++ {
		f, ok := granted.fractionalIDs.Dequeue()
		if !ok {
			break
		}

		r.mergeFractional(f)
	}
}

// mergeFractional merges a single (id, frac) pair into this pool's
// fractional_ids, promoting to whole (or paying down the backlog) if the
// merged residual reaches exactly 1.
func (r *ResourceIds) mergeFractional(f fractionalSlot) {
	existingLen := r.fractionalIDs.Len()
	for i := 0; i < existingLen; i++ {
		existing, ok := r.fractionalIDs.Dequeue()
		if !ok {
			break
		}

		if existing.id == f.id {
			merged := existing.residual.Add(f.residual)

			if merged.GreaterThan(NewFixedPointFromInt(1)) {
				fatalf("resource: Release: %v: slot %d residual %s", ErrResidualOverflow, f.id, merged)
			}

			if merged.Equals(NewFixedPointFromInt(1)) {
				if r.decrementBacklog > 0 {
					r.decrementBacklog--
				} else {
					r.wholeIDs.Push(f.id)
				}
			} else {
				r.fractionalIDs.Enqueue(fractionalSlot{id: f.id, residual: merged})
			}

			// Every entry after index i in the original sequence was never
			// dequeued and remains at the front of the queue untouched.
			return
		}

		r.fractionalIDs.Enqueue(existing)
	}

	// id not found among existing fractional entries; append the pair.
	r.fractionalIDs.Enqueue(f)
}

// Plus returns a new ResourceIds equal to self merged with other, via the
// Release algorithm run against a copy of self. Neither self nor other is
// mutated.
func (r *ResourceIds) Plus(other *ResourceIds) *ResourceIds {
	result := r.Copy()
	result.Release(other.Copy())
	return result
}

// Copy returns a value-independent deep copy of this ResourceIds.
func (r *ResourceIds) Copy() *ResourceIds {
	clone := &ResourceIds{
		wholeIDs:      &stack.Stack[int64]{},
		fractionalIDs: queue.NewFifo[fractionalSlot](0),
		totalCapacity: r.totalCapacity,
		decrementBacklog: r.decrementBacklog,
	}

	// Drain-and-restore to enumerate without a Range method on Stack.
	ids := make([]int64, 0, r.wholeIDs.Size())
	for !r.wholeIDs.IsEmpty() {
		id, _ := r.wholeIDs.Pop()
		ids = append(ids, id)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		r.wholeIDs.Push(ids[i])
		clone.wholeIDs.Push(ids[i])
	}

	fracLen := r.fractionalIDs.Len()
	collected := make([]fractionalSlot, 0, fracLen)
	for i := 0; i < fracLen; i++ {
		f, ok := r.fractionalIDs.Dequeue()
		if !ok {
			break
		}
		collected = append(collected, f)
	}
	for _, f := range collected {
		r.fractionalIDs.Enqueue(f)
		clone.fractionalIDs.Enqueue(f)
	}

	return clone
}

// UpdateCapacity resizes the pool's declared capacity to newTotal whole
// units. newTotal must be an integer (the open question in this package's
// design is resolved in favor of forbidding a fractional total_capacity
// entirely, since every call site constructs pools from whole slot counts).
func (r *ResourceIds) UpdateCapacity(newTotal int64) {
	if newTotal < 0 {
		fatalf("resource: UpdateCapacity: %v", ErrNegativeCapacity)
	}

	delta := newTotal - r.totalCapacity.Int64()

	if delta > 0 {
		r.increaseCapacity(delta)
	} else if delta < 0 {
		r.decreaseCapacity(-delta)
	}
}

// increaseCapacity grows the pool by delta whole units, first canceling
// any outstanding decrement backlog.
func (r *ResourceIds) increaseCapacity(delta int64) {
	actual := delta - r.decrementBacklog
	if actual < 0 {
		actual = 0
	}

	r.decrementBacklog -= delta
	if r.decrementBacklog < 0 {
		r.decrementBacklog = 0
	}

	for i := int64(0); i < actual; i++ {
		r.wholeIDs.Push(DynamicSlotID)
	}

	// totalCapacity tracks the declared capacity in full, independent of how
	// many of those units could be physically materialized as free slots
	// right now -- the ones absorbed by the backlog are still "owed" rather
	// than created, but they still count toward the declared total.
	r.totalCapacity = r.totalCapacity.Add(NewFixedPointFromInt(delta))
}

// decreaseCapacity shrinks the pool by d whole units. Fractional pieces do
// not count toward what can be removed immediately; any shortfall becomes
// (or adds to) the decrement backlog.
func (r *ResourceIds) decreaseCapacity(d int64) {
	available := int64(r.wholeIDs.Size())

	toDiscard := d
	if available < d {
		r.decrementBacklog += d - available
		toDiscard = available
	}

	for i := int64(0); i < toDiscard; i++ {
		if _, err := r.wholeIDs.Pop(); err != nil {
			fatalf("resource: decreaseCapacity: %v", err)
		}
	}

	r.totalCapacity = r.totalCapacity.Subtract(NewFixedPointFromInt(d))
}

// SlotRecord is one (id, fraction) pair in the wire-neutral export produced
// by Serialize.
type SlotRecord struct {
	ID       int64
	Fraction float64
}

// Serialize produces the deterministic, wire-neutral slot records for this
// pool: whole ids contribute (id, 1.0); fractional entries contribute
// (id, residual) with 0 < residual < 1. Map/pool iteration order is not
// semantically significant -- a consuming schema must treat this as an
// unordered collection.
func (r *ResourceIds) Serialize() []SlotRecord {
	records := make([]SlotRecord, 0, r.wholeIDs.Size()+r.fractionalIDs.Len())

	ids := make([]int64, 0, r.wholeIDs.Size())
	for !r.wholeIDs.IsEmpty() {
		id, _ := r.wholeIDs.Pop()
		ids = append(ids, id)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		r.wholeIDs.Push(ids[i])
		records = append(records, SlotRecord{ID: ids[i], Fraction: 1.0})
	}

	fracLen := r.fractionalIDs.Len()
	collected := make([]fractionalSlot, 0, fracLen)
	for i := 0; i < fracLen; i++ {
		f, ok := r.fractionalIDs.Dequeue()
		if !ok {
			break
		}
		collected = append(collected, f)
	}
	for _, f := range collected {
		r.fractionalIDs.Enqueue(f)
		records = append(records, SlotRecord{ID: f.id, Fraction: f.residual.Float64()})
	}

	return records
}

// SerializeJSON encodes Serialize's records as deterministic JSON bytes,
// via goccy/go-json, matching the teacher's own choice for every struct
// that needs a stable wire form.
func (r *ResourceIds) SerializeJSON() ([]byte, error) {
	return json.Marshal(r.Serialize())
}
