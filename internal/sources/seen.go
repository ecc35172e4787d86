package sources

// SeenSet records article links in insertion order for one run.
type SeenSet struct {
	index map[string]struct{}
	order []string
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{index: make(map[string]struct{})}
}

// Has reports whether link was already added.
func (s *SeenSet) Has(link string) bool {
	_, ok := s.index[link]
	return ok
}

// Add records link and reports whether it was new.
func (s *SeenSet) Add(link string) bool {
	if s.Has(link) {
		return false
	}
	s.index[link] = struct{}{}
	s.order = append(s.order, link)
	return true
}

// Len returns the number of distinct links.
func (s *SeenSet) Len() int {
	return len(s.order)
}

// Links returns the links in the order they were added.
func (s *SeenSet) Links() []string {
	return append([]string(nil), s.order...)
}
