package service

import (
	"context"
	"testing"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/infra/db"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/repo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRelational(t *testing.T) (Backend, *gorm.DB) {
	t.Helper()
	cfg := &config.Config{Database: config.DBCfg{Driver: "sqlite", DSN: "file::memory:?_foreign_keys=on"}}
	d, err := db.New(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log := zap.NewNop()
	return NewRelationalBackend(repo.NewIdentifierBridge(d), repo.NewEntityRepo(d, log), 4, log), d
}

func mustCreate(t *testing.T, b Backend, kind model.Kind, fields model.Fields) *model.Record {
	t.Helper()
	rec, err := b.Create(context.Background(), kind, fields)
	require.NoError(t, err)
	return rec
}

func countRows(t *testing.T, d *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, d.Table(table).Count(&n).Error)
	return n
}
