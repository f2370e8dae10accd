package model

// ClusterRecord is the one-record-per-cluster layout with nested arrays.
type ClusterRecord struct {
	ClusterID    string   `json:"cluster_id"`
	ClusterSize  int      `json:"cluster_size"`
	Accessions   []string `json:"accessions"`
	Sequences    []string `json:"sequences"`
	Descriptions []string `json:"descriptions"`
	Indices      []int    `json:"indices"`
}

// SequenceRecord is the flattened layout, with the cluster denormalised onto every member.
type SequenceRecord struct {
	ClusterID   string `json:"cluster_id"`
	ClusterSize int    `json:"cluster_size"`
	Accession   string `json:"accession"`
	Sequence    string `json:"sequence"`
	Description string `json:"description"`
	Index       int    `json:"index"`
}

func (c *Cluster) Record() ClusterRecord {
	rec := ClusterRecord{
		ClusterID:    c.ID,
		ClusterSize:  c.Size(),
		Accessions:   make([]string, c.Size()),
		Sequences:    make([]string, c.Size()),
		Descriptions: make([]string, c.Size()),
		Indices:      make([]int, c.Size()),
	}
	for i, m := range c.Members {
		rec.Accessions[i] = m.Accession
		rec.Sequences[i] = m.Sequence
		rec.Descriptions[i] = m.Description
		rec.Indices[i] = m.Index
	}
	return rec
}

func (c *Cluster) SequenceRecords() []SequenceRecord {
	out := make([]SequenceRecord, c.Size())
	for i, m := range c.Members {
		out[i] = SequenceRecord{
			ClusterID:   c.ID,
			ClusterSize: c.Size(),
			Accession:   m.Accession,
			Sequence:    m.Sequence,
			Description: m.Description,
			Index:       m.Index,
		}
	}
	return out
}

// Cluster rebuilds a cluster from its record. The record's arrays are checked
// like an upstream row; cluster_size is derived, not trusted. A record without
// members fails with ErrEmptyRow.
func (r ClusterRecord) Cluster() (*Cluster, error) {
	row := Row{
		Accessions:   r.Accessions,
		Sequences:    r.Sequences,
		Descriptions: r.Descriptions,
		Indices:      r.Indices,
	}
	if err := row.Validate(); err != nil {
		return nil, err
	}
	if row.Len() == 0 {
		return nil, ErrEmptyRow
	}
	return &Cluster{ID: r.ClusterID, Members: row.Members()}, nil
}
