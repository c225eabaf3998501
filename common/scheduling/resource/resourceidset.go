package resource

import (
	"github.com/goccy/go-json"
)

// ResourceIdSet is a mapping from resource name to ResourceIds: the outer,
// identity-preserving counterpart to ResourceSet's aggregate quantities. A
// resource name is present iff its ResourceIds is non-empty; an Acquire or
// Release that drains a pool to empty removes the key. ResourceIdSet owns
// its ResourceIds pools exclusively -- there is no sharing between two
// ResourceIdSet values, and Plus/Acquire always return freshly owned
// values.
type ResourceIdSet struct {
	pools map[string]*ResourceIds
}

// NewResourceIdSet constructs an empty ResourceIdSet.
func NewResourceIdSet() *ResourceIdSet {
	return &ResourceIdSet{pools: make(map[string]*ResourceIds)}
}

// Contains reports whether every resource named in req is present with a
// sufficient ResourceIds pool to satisfy the requested quantity.
func (s *ResourceIdSet) Contains(req *ResourceSet) bool {
	for name, qty := range req.resources {
		pool, ok := s.pools[name]
		if !ok {
			return false
		}
		if !pool.Contains(qty) {
			return false
		}
	}
	return true
}

// Acquire debits req from the underlying pools and returns a freshly owned
// ResourceIdSet holding exactly what was granted. If a pool becomes empty
// after the acquire, its key is removed from this set.
func (s *ResourceIdSet) Acquire(req *ResourceSet) *ResourceIdSet {
	granted := NewResourceIdSet()

	for name, qty := range req.resources {
		pool, ok := s.pools[name]
		if !ok {
			fatalf("resource: ResourceIdSet.Acquire: %v: %q", ErrUnknownResource, name)
		}

		granted.pools[name] = pool.Acquire(qty)

		if pool.IsEmpty() {
			delete(s.pools, name)
		}
	}

	return granted
}

// Release merges granted back into the appropriate pools, creating a pool
// for any key absent from this set.
func (s *ResourceIdSet) Release(granted *ResourceIdSet) {
	for name, ids := range granted.pools {
		pool, ok := s.pools[name]
		if !ok {
			pool = NewResourceIds(0)
			s.pools[name] = pool
		}

		pool.Release(ids)
	}
}

// ReleaseConstrained releases granted only for keys that still exist in
// total. A key that total no longer has is a soft condition -- the owning
// node deleted that resource while the grant was outstanding -- and is
// logged at debug level and dropped rather than recreating a pool for a
// resource that genuinely no longer exists.
func (s *ResourceIdSet) ReleaseConstrained(granted *ResourceIdSet, total *ResourceSet) {
	for name, ids := range granted.pools {
		if _, ok := total.resources[name]; !ok {
			log.Debug("resource: ReleaseConstrained: %q no longer present in total, dropping release", name)
			continue
		}

		pool, ok := s.pools[name]
		if !ok {
			pool = NewResourceIds(0)
			s.pools[name] = pool
		}

		pool.Release(ids)
	}
}

// Plus returns a new ResourceIdSet equal to self merged with other, via
// Release run against a copy. Neither self nor other is mutated.
func (s *ResourceIdSet) Plus(other *ResourceIdSet) *ResourceIdSet {
	result := s.Copy()
	result.Release(other.Copy())
	return result
}

// AddOrUpdateResource creates a new ResourceIds(capacity) for name if
// absent, or calls UpdateCapacity on the existing pool.
func (s *ResourceIdSet) AddOrUpdateResource(name string, capacity int64) {
	if pool, ok := s.pools[name]; ok {
		pool.UpdateCapacity(capacity)
		return
	}

	s.pools[name] = NewResourceIds(capacity)
}

// DeleteResource removes name from this set.
func (s *ResourceIdSet) DeleteResource(name string) {
	delete(s.pools, name)
}

// GetCpuResources returns a ResourceIdSet containing only the CPU key, if
// present.
func (s *ResourceIdSet) GetCpuResources() *ResourceIdSet {
	result := NewResourceIdSet()
	if pool, ok := s.pools[CPU.String()]; ok {
		result.pools[CPU.String()] = pool.Copy()
	}
	return result
}

// ToResourceSet projects this ResourceIdSet down to an aggregate
// ResourceSet by summing each pool's TotalQuantity.
func (s *ResourceIdSet) ToResourceSet() *ResourceSet {
	rs := NewResourceSet()
	for name, pool := range s.pools {
		rs.AddOrUpdate(name, pool.TotalQuantity())
	}
	return rs
}

// Clear removes every resource from this set.
func (s *ResourceIdSet) Clear() {
	s.pools = make(map[string]*ResourceIds)
}

// Copy returns a value-independent deep copy of this ResourceIdSet.
func (s *ResourceIdSet) Copy() *ResourceIdSet {
	clone := NewResourceIdSet()
	for name, pool := range s.pools {
		clone.pools[name] = pool.Copy()
	}
	return clone
}

// ResourceRecord is the per-resource record in the wire-neutral export
// produced by Serialize.
type ResourceRecord struct {
	Name      string
	IDs       []int64
	Fractions []float64
}

// Serialize produces the deterministic, wire-neutral export of this
// ResourceIdSet: one record per resource name, with parallel id/fraction
// slices. Map iteration order across resource names is not semantically
// significant.
func (s *ResourceIdSet) Serialize() []ResourceRecord {
	records := make([]ResourceRecord, 0, len(s.pools))

	for name, pool := range s.pools {
		slots := pool.Serialize()

		ids := make([]int64, len(slots))
		fractions := make([]float64, len(slots))
		for i, slot := range slots {
			ids[i] = slot.ID
			fractions[i] = slot.Fraction
		}

		records = append(records, ResourceRecord{Name: name, IDs: ids, Fractions: fractions})
	}

	return records
}

// SerializeJSON encodes Serialize's records as deterministic JSON bytes,
// via goccy/go-json, matching the teacher's own choice for every struct
// that needs a stable wire form.
func (s *ResourceIdSet) SerializeJSON() ([]byte, error) {
	return json.Marshal(s.Serialize())
}

// String renders the ResourceIdSet via its projected ResourceSet, matching
// the textual form used everywhere else in this package.
func (s *ResourceIdSet) String() string {
	return s.ToResourceSet().String()
}
