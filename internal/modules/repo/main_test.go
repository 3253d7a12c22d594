package repo

import (
	"testing"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/infra/db"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return d
}

type fixture struct {
	ada, bob *model.User
	acme     *model.Account
	apollo   *model.Project
	launch   *model.Task
	note     *model.Update
}

func seed(t *testing.T, d *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		ada: &model.User{RecordID: "usr_ada", UserName: "Ada"},
		bob: &model.User{RecordID: "usr_bob", UserName: "Bob"},
	}
	require.NoError(t, d.Create(f.ada).Error)
	require.NoError(t, d.Create(f.bob).Error)

	f.acme = &model.Account{RecordID: "acc_acme", AccountName: "Acme", AccountOwnerID: f.ada.ID}
	require.NoError(t, d.Create(f.acme).Error)

	f.apollo = &model.Project{RecordID: "prj_apollo", ProjectName: "Apollo", AccountID: f.acme.ID, ProjectOwnerID: f.ada.ID}
	require.NoError(t, d.Create(f.apollo).Error)

	f.launch = &model.Task{RecordID: "tsk_launch", TaskName: "Launch", ProjectID: f.apollo.ID, AssignedToID: f.bob.ID, CreatedByID: f.ada.ID}
	require.NoError(t, d.Create(f.launch).Error)

	f.note = &model.Update{RecordID: "upd_note", Notes: "kickoff", ProjectID: f.apollo.ID, TaskID: &f.launch.ID, UpdateOwnerID: f.bob.ID}
	require.NoError(t, d.Create(f.note).Error)
	return f
}
