package model

import "fmt"

// NewRow assembles a Row from upstream fields and checks that the parallel
// arrays line up. A missing field is treated as empty.
func NewRow(fields map[string]Value) (*Row, error) {
	indices, err := fields[FieldIndex].Ints()
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", FieldIndex, err)
	}

	row := &Row{
		Accessions:   fields[FieldAccession].Strings(),
		Sequences:    fields[FieldSequence].Strings(),
		Descriptions: fields[FieldDescription].Strings(),
		Indices:      indices,
	}

	if err := row.Validate(); err != nil {
		return nil, err
	}
	return row, nil
}

// Validate verifies the parallel array invariant. Mismatches are reported, never truncated.
func (r *Row) Validate() error {
	n := len(r.Accessions)
	if len(r.Sequences) == n && len(r.Descriptions) == n && len(r.Indices) == n {
		return nil
	}
	return &RaggedRowError{
		Accessions:   len(r.Accessions),
		Sequences:    len(r.Sequences),
		Descriptions: len(r.Descriptions),
		Indices:      len(r.Indices),
	}
}

func (r *Row) Len() int {
	return len(r.Accessions)
}

// Member returns position i of the row. The row must be valid.
func (r *Row) Member(i int) Member {
	return Member{
		Accession:   r.Accessions[i],
		Sequence:    r.Sequences[i],
		Description: r.Descriptions[i],
		Index:       r.Indices[i],
	}
}

func (r *Row) Members() []Member {
	members := make([]Member, r.Len())
	for i := range members {
		members[i] = r.Member(i)
	}
	return members
}
