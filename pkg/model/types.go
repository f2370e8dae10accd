package model

// One sequence of a cluster. Index is relative to the upstream row, not globally unique.
type Member struct {
	Accession   string `json:"accession"`
	Sequence    string `json:"sequence"`
	Description string `json:"description"`
	Index       int    `json:"index"`
}

type Cluster struct {
	ID      string   `json:"cluster_id"`
	Members []Member `json:"members"`
}

// Unit delivered by the upstream stream: four parallel arrays, position i of
// each describes one member.
type Row struct {
	Accessions   []string
	Sequences    []string
	Descriptions []string
	Indices      []int
}

// Upstream field names of a row.
const (
	FieldAccession   = "accession"
	FieldSequence    = "sequence"
	FieldDescription = "description"
	FieldIndex       = "index"
)

var RowFields = []string{FieldAccession, FieldSequence, FieldDescription, FieldIndex}

// SizeRange is an inclusive cluster size filter. A Max of zero (Unbounded) means no upper bound.
type SizeRange struct {
	Min int
	Max int
}

const Unbounded = 0

func (r SizeRange) Contains(size int) bool {
	if size < r.Min {
		return false
	}
	return r.Max == Unbounded || size <= r.Max
}
