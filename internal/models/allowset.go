package models

// AllowSet is a set of category names (exact, case-sensitive match).
// A nil *AllowSet means no category filter was requested.
type AllowSet struct {
	names map[string]struct{}
}

// NewAllowSet builds a set from names.
func NewAllowSet(names ...string) *AllowSet {
	s := &AllowSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Add inserts name into the set.
func (s *AllowSet) Add(name string) {
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	s.names[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s *AllowSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Len returns the number of names in the set.
func (s *AllowSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
