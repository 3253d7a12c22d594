package repo

import (
	"context"
	"testing"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEntityRepo_CreateAndGet(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	task := &model.Task{RecordID: "tsk_new", TaskName: "Write docs", ProjectID: f.apollo.ID, AssignedToID: f.ada.ID, CreatedByID: f.ada.ID}
	require.NoError(t, r.Create(ctx, task))
	assert.NotZero(t, task.ID)

	got, err := r.Get(ctx, model.KindTask, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "tsk_new", got.ExternalID())
	// the column default applies when no status is given
	assert.Equal(t, model.TaskStatusToDo, got.(*model.Task).Status)

	_, err = r.Get(ctx, model.KindTask, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEntityRepo_CreateErrors(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	dangling := &model.Task{RecordID: "tsk_dangling", TaskName: "x", ProjectID: 4242, AssignedToID: f.ada.ID, CreatedByID: f.ada.ID}
	assert.ErrorIs(t, r.Create(ctx, dangling), apperr.ErrInvalidReference)

	var n int64
	require.NoError(t, d.Model(&model.Task{}).Where("record_id = ?", "tsk_dangling").Count(&n).Error)
	assert.Zero(t, n)

	dup := &model.User{RecordID: f.ada.RecordID, UserName: "Ada again"}
	err := r.Create(ctx, dup)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestEntityRepo_Update(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, r.Update(ctx, model.KindTask, f.launch.ID, map[string]any{"status": string(model.TaskStatusDone)}))
	got, err := r.Get(ctx, model.KindTask, f.launch.ID)
	require.NoError(t, err)
	task := got.(*model.Task)
	assert.Equal(t, model.TaskStatusDone, task.Status)
	assert.Equal(t, "Launch", task.TaskName)

	// applying the same change again is accepted
	require.NoError(t, r.Update(ctx, model.KindTask, f.launch.ID, map[string]any{"status": string(model.TaskStatusDone)}))

	err = r.Update(ctx, model.KindTask, 9999, map[string]any{"status": string(model.TaskStatusDone)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = r.Update(ctx, model.KindTask, f.launch.ID, map[string]any{"project_id": uint(4242)})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	err = r.Update(ctx, model.KindTask, f.launch.ID, nil)
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
}

func TestEntityRepo_Finders(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	rows, err := r.FindByKeys(ctx, model.KindUser, []uint{f.bob.ID, 4242, f.ada.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "usr_ada", rows[0].ExternalID())
	assert.Equal(t, "usr_bob", rows[1].ExternalID())

	all, err := r.FindAll(ctx, model.KindProject)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "prj_apollo", all[0].ExternalID())

	assigned, err := r.FindByColumn(ctx, model.KindTask, "assigned_to_id", f.bob.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "tsk_launch", assigned[0].ExternalID())

	_, err = r.FindByColumn(ctx, model.KindTask, "id; drop table tasks", f.bob.ID)
	assert.Error(t, err)
}

func TestEntityRepo_Inbound(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	second := &model.Task{RecordID: "tsk_second", TaskName: "Second", ProjectID: f.apollo.ID, AssignedToID: f.ada.ID, CreatedByID: f.ada.ID}
	require.NoError(t, r.Create(ctx, second))

	edge, _ := model.SchemaOf(model.KindProject).Field(model.FieldProjectTasks)
	ids, err := r.Inbound(ctx, edge, f.apollo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tsk_launch", "tsk_second"}, ids)

	edge, _ = model.SchemaOf(model.KindUser).Field(model.FieldTasksAssigned)
	ids, err = r.Inbound(ctx, edge, f.ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tsk_second"}, ids)

	edge, _ = model.SchemaOf(model.KindAccount).Field(model.FieldAccountProjs)
	ids, err = r.Inbound(ctx, edge, 4242)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEntityRepo_Lookup(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())

	refs, err := r.Lookup(context.Background(), model.KindUser, []uint{f.ada.ID, f.bob.ID, 4242})
	require.NoError(t, err)
	assert.Equal(t, map[uint]model.Ref{
		f.ada.ID: {RecordID: "usr_ada", Name: "Ada"},
		f.bob.ID: {RecordID: "usr_bob", Name: "Bob"},
	}, refs)

	refs, err = r.Lookup(context.Background(), model.KindUpdate, []uint{f.note.ID})
	require.NoError(t, err)
	assert.Equal(t, model.Ref{RecordID: "upd_note"}, refs[f.note.ID])
}

func TestEntityRepo_Secrets(t *testing.T) {
	d := newTestDB(t)
	f := seed(t, d)
	r := NewEntityRepo(d, zap.NewNop())
	ctx := context.Background()

	digest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	require.NoError(t, r.SetUserSecret(ctx, f.bob.ID, digest))

	u, err := r.FindUserBySecret(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "usr_bob", u.RecordID)

	_, err = r.FindUserBySecret(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, r.SetUserSecret(ctx, 4242, digest), apperr.ErrNotFound)
}
