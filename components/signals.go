package components

// Signals is a per-entity scratchpad of named values readable from script
// through the callback context snapshot.
type Signals struct {
	Scalars  map[string]float32
	Integers map[string]int64
	Strings  map[string]string
	Flags    map[string]struct{}
}

// NewSignals returns an empty signal store.
func NewSignals() Signals {
	return Signals{
		Scalars:  make(map[string]float32),
		Integers: make(map[string]int64),
		Strings:  make(map[string]string),
		Flags:    make(map[string]struct{}),
	}
}

// SetScalar sets a named scalar.
func (s *Signals) SetScalar(name string, v float32) {
	if s.Scalars == nil {
		s.Scalars = make(map[string]float32)
	}
	s.Scalars[name] = v
}

// SetInteger sets a named integer.
func (s *Signals) SetInteger(name string, v int64) {
	if s.Integers == nil {
		s.Integers = make(map[string]int64)
	}
	s.Integers[name] = v
}

// SetString sets a named string.
func (s *Signals) SetString(name, v string) {
	if s.Strings == nil {
		s.Strings = make(map[string]string)
	}
	s.Strings[name] = v
}

// SetFlag adds a flag.
func (s *Signals) SetFlag(name string) {
	if s.Flags == nil {
		s.Flags = make(map[string]struct{})
	}
	s.Flags[name] = struct{}{}
}

// ClearFlag removes a flag.
func (s *Signals) ClearFlag(name string) {
	delete(s.Flags, name)
}

// HasFlag reports whether a flag is set.
func (s *Signals) HasFlag(name string) bool {
	_, ok := s.Flags[name]
	return ok
}
