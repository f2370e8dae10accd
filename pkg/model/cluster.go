package model

import "iter"

// ClusterFromRow reads a row in the native layout, where the row is one
// cluster and its first accession is the cluster ID. Empty rows have no ID.
func ClusterFromRow(row *Row) (*Cluster, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}
	if row.Len() == 0 {
		return nil, ErrEmptyRow
	}
	return &Cluster{
		ID:      row.Accessions[0],
		Members: row.Members(),
	}, nil
}

func (c *Cluster) Size() int {
	return len(c.Members)
}

func (c *Cluster) Add(m Member) {
	c.Members = append(c.Members, m)
}

// ClusterSet maps cluster ID to cluster and remembers insertion order.
// Get never creates an entry, GetOrCreate is the only place one is made.
type ClusterSet struct {
	order []string
	byID  map[string]*Cluster
}

func NewClusterSet() *ClusterSet {
	return &ClusterSet{byID: make(map[string]*Cluster)}
}

func (s *ClusterSet) Get(id string) (*Cluster, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *ClusterSet) GetOrCreate(id string) *Cluster {
	if c, ok := s.byID[id]; ok {
		return c
	}
	c := &Cluster{ID: id}
	s.byID[id] = c
	s.order = append(s.order, id)
	return c
}

// put shares c with the receiver; used to build filtered views.
func (s *ClusterSet) put(c *Cluster) {
	if _, ok := s.byID[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.byID[c.ID] = c
}

func (s *ClusterSet) Len() int {
	return len(s.order)
}

// Members counts every member across all clusters.
func (s *ClusterSet) Members() int {
	total := 0
	for _, id := range s.order {
		total += s.byID[id].Size()
	}
	return total
}

func (s *ClusterSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All yields clusters in insertion order.
func (s *ClusterSet) All() iter.Seq[*Cluster] {
	return func(yield func(*Cluster) bool) {
		for _, id := range s.order {
			if !yield(s.byID[id]) {
				return
			}
		}
	}
}

// Stream adapts All to the (cluster, error) shape consumed by exporters.
func (s *ClusterSet) Stream() iter.Seq2[*Cluster, error] {
	return func(yield func(*Cluster, error) bool) {
		for c := range s.All() {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// FilterBySize builds a new set holding the clusters whose size lies in r.
// Clusters are shared, not copied, and the receiver is left untouched.
func (s *ClusterSet) FilterBySize(r SizeRange) *ClusterSet {
	out := NewClusterSet()
	for c := range s.All() {
		if r.Contains(c.Size()) {
			out.put(c)
		}
	}
	return out
}

func (s *ClusterSet) Sizes() []int {
	sizes := make([]int, 0, len(s.order))
	for c := range s.All() {
		sizes = append(sizes, c.Size())
	}
	return sizes
}
