package handler

// DI for all handlers alike.

import (
	"context"

	"github.com/yumyai/uniref90/pkg/db"
	"github.com/yumyai/uniref90/pkg/model"
)

// ClusterStore is the read side of the SQLite cluster store.
type ClusterStore interface {
	GetCluster(ctx context.Context, id string) (*model.Cluster, error)
	FilterBySize(ctx context.Context, r model.SizeRange, limit int) ([]*model.Cluster, error)
	Sizes(ctx context.Context) ([]int, error)
	Runs(ctx context.Context) ([]db.Run, error)
}

type DBContext struct {
	Store ClusterStore
}
