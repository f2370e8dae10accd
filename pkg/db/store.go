// Package db keeps exported clusters in a SQLite file so they can be served
// and queried without touching the upstream dataset again.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/yumyai/uniref90/logger"
	"github.com/yumyai/uniref90/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS export_runs (
	run_id     TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS clusters (
	pos          INTEGER PRIMARY KEY,
	cluster_id   TEXT NOT NULL,
	cluster_size INTEGER NOT NULL,
	run_id       TEXT NOT NULL REFERENCES export_runs(run_id)
);
CREATE TABLE IF NOT EXISTS members (
	pos         INTEGER NOT NULL REFERENCES clusters(pos),
	member_pos  INTEGER NOT NULL,
	accession   TEXT NOT NULL,
	sequence    TEXT NOT NULL,
	description TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	PRIMARY KEY (pos, member_pos)
);
CREATE INDEX IF NOT EXISTS clusters_by_id ON clusters(cluster_id);
CREATE INDEX IF NOT EXISTS clusters_by_size ON clusters(cluster_size);
`

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one export into the store.
type Run struct {
	ID        string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}

type Store struct {
	sqlDB *sql.DB
	run   string
}

// Open connects to the SQLite file at path. The schema is not created; call Init.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// BeginRun records a new export run; clusters inserted afterwards belong to it.
func (s *Store) BeginRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO export_runs (run_id, created_at, source) VALUES (?, ?, ?)`,
		id, time.Now().UTC().Format(timeLayout), source)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	s.run = id
	logger.Debug("Started export run", zap.String("run_id", id), zap.String("source", source))
	return id, nil
}

func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, created_at, source FROM export_runs ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Source); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type inserter struct {
	cluster *sql.Stmt
	member  *sql.Stmt
	next    int64
}

func (s *Store) prepareInsert(ctx context.Context, tx *sql.Tx) (*inserter, error) {
	if s.run == "" {
		return nil, errors.New("no export run started")
	}

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(pos), 0) + 1 FROM clusters`).Scan(&next); err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	clusterStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clusters (pos, cluster_id, cluster_size, run_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare cluster insert: %w", err)
	}
	memberStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO members (pos, member_pos, accession, sequence, description, idx) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		clusterStmt.Close()
		return nil, fmt.Errorf("prepare member insert: %w", err)
	}

	return &inserter{cluster: clusterStmt, member: memberStmt, next: next}, nil
}

func (ins *inserter) insert(ctx context.Context, run string, c *model.Cluster) error {
	pos := ins.next
	if _, err := ins.cluster.ExecContext(ctx, pos, c.ID, c.Size(), run); err != nil {
		return fmt.Errorf("insert cluster %s: %w", c.ID, err)
	}
	for i, m := range c.Members {
		if _, err := ins.member.ExecContext(ctx, pos, i, m.Accession, m.Sequence, m.Description, m.Index); err != nil {
			return fmt.Errorf("insert member %d of %s: %w", i, c.ID, err)
		}
	}
	ins.next++
	return nil
}

func (ins *inserter) close() {
	ins.cluster.Close()
	ins.member.Close()
}

// InsertCluster appends one cluster after every stored cluster.
func (s *Store) InsertCluster(ctx context.Context, c *model.Cluster) error {
	return s.InsertClusters(ctx, func(yield func(*model.Cluster, error) bool) {
		yield(c, nil)
	}, nil)
}

// InsertClusters appends every cluster of seq in one transaction, in order.
// onInsert, if set, is called with the running count after each cluster.
func (s *Store) InsertClusters(ctx context.Context, seq iter.Seq2[*model.Cluster, error], onInsert func(int)) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ins, err := s.prepareInsert(ctx, tx)
	if err != nil {
		return err
	}
	defer ins.close()

	n := 0
	for c, err := range seq {
		if err != nil {
			return err
		}
		if err := ins.insert(ctx, s.run, c); err != nil {
			return err
		}
		n++
		if onInsert != nil {
			onInsert(n)
		}
	}

	return tx.Commit()
}

// GetCluster returns the earliest stored cluster with the given ID.
func (s *Store) GetCluster(ctx context.Context, id string) (*model.Cluster, error) {
	var pos int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT pos FROM clusters WHERE cluster_id = ? ORDER BY pos LIMIT 1`, id).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrClusterNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	c := &model.Cluster{ID: id}
	c.Members, err = s.members(ctx, pos)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) members(ctx context.Context, pos int64) ([]model.Member, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT accession, sequence, description, idx FROM members WHERE pos = ? ORDER BY member_pos`, pos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.Accession, &m.Sequence, &m.Description, &m.Index); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FilterBySize returns stored clusters whose size lies in r, in stored order.
// limit <= 0 returns every match.
func (s *Store) FilterBySize(ctx context.Context, r model.SizeRange, limit int) ([]*model.Cluster, error) {
	if limit <= 0 {
		limit = -1
	}

	const query = `
		SELECT c.pos, c.cluster_id, m.accession, m.sequence, m.description, m.idx
		FROM (
			SELECT pos, cluster_id FROM clusters
			WHERE cluster_size >= ? AND (? = 0 OR cluster_size <= ?)
			ORDER BY pos
			LIMIT ?
		) c
		JOIN members m ON m.pos = c.pos
		ORDER BY c.pos, m.member_pos;
	`

	stmt, err := s.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare filter: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, r.Min, r.Max, r.Max, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Cluster
	lastPos := int64(-1)
	for rows.Next() {
		var pos int64
		var id string
		var m model.Member
		if err := rows.Scan(&pos, &id, &m.Accession, &m.Sequence, &m.Description, &m.Index); err != nil {
			return nil, err
		}
		if pos != lastPos {
			out = append(out, &model.Cluster{ID: id})
			lastPos = pos
		}
		out[len(out)-1].Add(m)
	}
	return out, rows.Err()
}

// All yields every stored cluster in stored order.
func (s *Store) All(ctx context.Context) iter.Seq2[*model.Cluster, error] {
	return func(yield func(*model.Cluster, error) bool) {
		clusters, err := s.FilterBySize(ctx, model.SizeRange{}, 0)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, c := range clusters {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Sizes lists every stored cluster size, for statistics.
func (s *Store) Sizes(ctx context.Context) ([]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT cluster_size FROM clusters ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		sizes = append(sizes, n)
	}
	return sizes, rows.Err()
}
