package processor

import "mediadedup/pkg/imgutil"

// Registry maps each fingerprint to the first location it was seen at.
// Entries are never replaced.
type Registry struct {
	seen map[string]Location
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]Location)}
}

func (r *Registry) Lookup(fingerprint string) (Location, bool) {
	loc, ok := r.seen[fingerprint]
	return loc, ok
}

// Claim records loc as the owner of fingerprint unless another location
// already owns it. It returns the owner and whether loc became the owner.
func (r *Registry) Claim(fingerprint string, loc Location) (Location, bool) {
	if owner, ok := r.seen[fingerprint]; ok {
		return owner, false
	}
	r.seen[fingerprint] = loc
	return loc, true
}

func (r *Registry) Len() int {
	return len(r.seen)
}

// Resolver turns fingerprints into duplicate records in visit order. It is
// not safe for concurrent use.
type Resolver struct {
	registry   *Registry
	duplicates *Duplicates
	counts     Counts
}

func NewResolver() *Resolver {
	return &Resolver{
		registry:   NewRegistry(),
		duplicates: NewDuplicates(),
		counts:     NewCounts(),
	}
}

// Observe counts a scanned file toward its kind's total.
func (r *Resolver) Observe(kind imgutil.Kind) {
	r.counts.addTotal(kind)
}

// Resolve checks fingerprint against everything seen so far. The first file
// with a fingerprint becomes the original; every later one yields a record.
func (r *Resolver) Resolve(kind imgutil.Kind, fingerprint string, loc Location) (DuplicateRecord, bool) {
	if !kind.Fingerprinted() {
		return DuplicateRecord{}, false
	}

	owner, claimed := r.registry.Claim(fingerprint, loc)
	if claimed {
		return DuplicateRecord{}, false
	}

	rec := DuplicateRecord{Original: owner, Duplicate: loc}
	r.duplicates.Add(rec)
	r.counts.addDuplicate(kind)
	return rec, true
}

func (r *Resolver) Registry() *Registry     { return r.registry }
func (r *Resolver) Duplicates() *Duplicates { return r.duplicates }
func (r *Resolver) Counts() Counts          { return r.counts }
