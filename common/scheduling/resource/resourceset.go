package resource

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// ResourceSet is a sparse mapping from resource name to a strictly
// positive FixedPoint capacity. A zero-valued entry is never stored; any
// operation that would drop an entry to <= 0 removes the key instead. It is
// a value type: ResourceSet is freely copied, and a caller that hands one
// out (e.g. as the result of a Release) must not retain a reference to the
// original backing map.
type ResourceSet struct {
	resources map[string]FixedPoint
}

// NewResourceSet constructs an empty ResourceSet.
func NewResourceSet() *ResourceSet {
	return &ResourceSet{resources: make(map[string]FixedPoint)}
}

// NewResourceSetFromMap constructs a ResourceSet from the given map. Every
// value must be strictly positive; a non-positive value is a programming
// error and is fatal, matching the construction contract in this package's
// design.
func NewResourceSetFromMap(m map[string]FixedPoint) *ResourceSet {
	rs := NewResourceSet()
	for name, qty := range m {
		if qty.IsZero() || qty.IsNegative() {
			fatalf("resource: NewResourceSetFromMap: resource %q has non-positive quantity %s", name, qty)
		}
		rs.resources[name] = qty
	}
	return rs
}

// Copy returns a value-independent copy of this ResourceSet.
func (rs *ResourceSet) Copy() *ResourceSet {
	clone := NewResourceSet()
	for name, qty := range rs.resources {
		clone.resources[name] = qty
	}
	return clone
}

// IsEmpty returns true iff the ResourceSet has no entries.
func (rs *ResourceSet) IsEmpty() bool {
	return len(rs.resources) == 0
}

// GetResource returns the stored quantity for name, or Zero if absent.
func (rs *ResourceSet) GetResource(name string) FixedPoint {
	if qty, ok := rs.resources[name]; ok {
		return qty
	}
	return Zero
}

// GetNumCpus returns the stored CPU quantity, or Zero if absent.
func (rs *ResourceSet) GetNumCpus() FixedPoint {
	return rs.GetResource(CPU.String())
}

// GetResourceMap returns a defensive copy of the underlying map, for
// callers that need to enumerate resource names and quantities.
func (rs *ResourceSet) GetResourceMap() map[string]FixedPoint {
	m := make(map[string]FixedPoint, len(rs.resources))
	for name, qty := range rs.resources {
		m[name] = qty
	}
	return m
}

// IsSubset returns true iff, for every key k in self, self[k] <= other[k]
// (treating a key missing from other as 0).
func (rs *ResourceSet) IsSubset(other *ResourceSet) bool {
	for name, qty := range rs.resources {
		if qty.GreaterThan(other.GetResource(name)) {
			return false
		}
	}
	return true
}

// IsSuperset returns other.IsSubset(self).
func (rs *ResourceSet) IsSuperset(other *ResourceSet) bool {
	return other.IsSubset(rs)
}

// Equals returns true iff rs and other are mutual subsets of one another.
// This deliberately treats {k: 0} (which cannot exist, by invariant) and {}
// as equal, sparing callers from having to canonicalize before comparing.
func (rs *ResourceSet) Equals(other *ResourceSet) bool {
	return rs.IsSubset(other) && other.IsSubset(rs)
}

// AddOrUpdate replaces the entry for name with quantity. A quantity <= 0 is a no-op,
// matching the invariant that only strictly positive values are stored.
func (rs *ResourceSet) AddOrUpdate(name string, quantity FixedPoint) {
	if quantity.IsZero() || quantity.IsNegative() {
		return
	}
	rs.resources[name] = quantity
}

// AddOrUpdateResource is an alias for AddOrUpdate, matching the external
// interface name used by callers outside this package.
func (rs *ResourceSet) AddOrUpdateResource(name string, quantity FixedPoint) {
	rs.AddOrUpdate(name, quantity)
}

// Delete removes name, returning whether it was present.
func (rs *ResourceSet) Delete(name string) bool {
	if _, ok := rs.resources[name]; !ok {
		return false
	}
	delete(rs.resources, name)
	return true
}

// DeleteResource is an alias for Delete.
func (rs *ResourceSet) DeleteResource(name string) bool {
	return rs.Delete(name)
}

// Subtract subtracts other from self, clamped at zero: self[k] <-
// max(0, self[k] - other[k]). Entries that reach <= 0 are erased. Never
// fails; this is the release-path variant, used when the ambient total may
// have shrunk out from under an in-flight grant.
func (rs *ResourceSet) Subtract(other *ResourceSet) {
	for name, qty := range other.resources {
		current, ok := rs.resources[name]
		if !ok {
			continue
		}

		remaining := current.Subtract(qty).ClampToZero()
		if remaining.IsZero() {
			delete(rs.resources, name)
		} else {
			rs.resources[name] = remaining
		}
	}
}

// SubtractResources is an alias for Subtract.
func (rs *ResourceSet) SubtractResources(other *ResourceSet) {
	rs.Subtract(other)
}

// SubtractStrict subtracts other from self, requiring that every key in
// other is present in self with a quantity >= other's. A violation is a
// programming error (acquiring what was never there) and is fatal.
// Entries that land on exactly zero are erased.
func (rs *ResourceSet) SubtractStrict(other *ResourceSet) {
	for name, qty := range other.resources {
		current, ok := rs.resources[name]
		if !ok {
			fatalf("resource: SubtractStrict: %v: %q", ErrUnknownResource, name)
		}

		if current.LessThan(qty) {
			fatalf("resource: SubtractStrict: %q has %s, cannot subtract %s", name, current, qty)
		}

		remaining := current.Subtract(qty)
		if remaining.IsZero() {
			delete(rs.resources, name)
		} else {
			rs.resources[name] = remaining
		}
	}
}

// SubtractResourcesStrict is an alias for SubtractStrict.
func (rs *ResourceSet) SubtractResourcesStrict(other *ResourceSet) {
	rs.SubtractStrict(other)
}

// AddOuterJoin adds other into self for every key in other, treating a key
// missing from self as 0. self[k] <- self[k] + other[k].
func (rs *ResourceSet) AddOuterJoin(other *ResourceSet) {
	for name, qty := range other.resources {
		rs.resources[name] = rs.GetResource(name).Add(qty)
	}
}

// AddResources is an alias for AddOuterJoin.
func (rs *ResourceSet) AddResources(other *ResourceSet) {
	rs.AddOuterJoin(other)
}

// AddCapped adds other into self, capped at the corresponding entry of
// total: for k in other, if k is present in total then
// self[k] <- min(self[k] + other[k], total[k]); if k is absent from total
// the addition is skipped and logged at debug level (a soft condition --
// the resource genuinely no longer exists, and the caller's intent is
// preserved to the extent possible).
func (rs *ResourceSet) AddCapped(other *ResourceSet, total *ResourceSet) {
	for name, qty := range other.resources {
		capValue, ok := total.resources[name]
		if !ok {
			log.Debug("resource: AddCapped: %q not present in total, dropping", name)
			continue
		}

		updated := rs.GetResource(name).Add(qty).Min(capValue)
		rs.AddOrUpdate(name, updated)
	}
}

// AddResourcesCapacityConstrained is an alias for AddCapped.
func (rs *ResourceSet) AddResourcesCapacityConstrained(other *ResourceSet, total *ResourceSet) {
	rs.AddCapped(other, total)
}

// String renders the ResourceSet's entries in sorted-by-name order so that
// two equal sets render identically regardless of map-iteration order.
// Tests that compare rendered strings must still tolerate differing
// formatting across versions of this method, but need not tolerate
// permutation thanks to the sort.
func (rs *ResourceSet) String() string {
	names := make([]string, 0, len(rs.resources))
	for name := range rs.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+rs.resources[name].String())
	}

	return "ResourceSet[" + strings.Join(parts, ", ") + "]"
}

// MarshalJSON renders the ResourceSet as its underlying name-to-quantity
// map, via goccy/go-json; each FixedPoint quantity marshals through its
// own MarshalJSON.
func (rs *ResourceSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.resources)
}

// UnmarshalJSON replaces this ResourceSet's entries with the name-to-
// quantity map decoded from data.
func (rs *ResourceSet) UnmarshalJSON(data []byte) error {
	m := make(map[string]FixedPoint)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	rs.resources = m
	return nil
}
