package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/recordgraph/recordgraph/internal/infra/httpclient"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAirtableAPI is a mock implementation of AirtableAPI
type MockAirtableAPI struct {
	mock.Mock
}

func (m *MockAirtableAPI) GetRecord(ctx context.Context, table, id string) (*httpclient.AirtableRecord, error) {
	args := m.Called(ctx, table, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.AirtableRecord), args.Error(1)
}

func (m *MockAirtableAPI) ListRecords(ctx context.Context, table, formula string) ([]httpclient.AirtableRecord, error) {
	args := m.Called(ctx, table, formula)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]httpclient.AirtableRecord), args.Error(1)
}

func (m *MockAirtableAPI) CreateRecord(ctx context.Context, table string, fields map[string]any) (*httpclient.AirtableRecord, error) {
	args := m.Called(ctx, table, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.AirtableRecord), args.Error(1)
}

func (m *MockAirtableAPI) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (*httpclient.AirtableRecord, error) {
	args := m.Called(ctx, table, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.AirtableRecord), args.Error(1)
}

func TestAirtable_GetProjectsThroughCatalog(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	api.On("GetRecord", ctx, "Tasks", "recT1").Return(&httpclient.AirtableRecord{
		ID: "recT1",
		Fields: map[string]any{
			"Task Name":   "Launch",
			"Status":      "Done",
			"Description": "",
			"Project":     []any{"recP1"},
			"Assigned To": []any{"recU1"},
			"internal":    "drop me",
		},
	}, nil).Once()

	rec, err := b.Get(ctx, model.KindTask, "recT1")
	require.NoError(t, err)
	assert.Equal(t, "recT1", rec.ID)
	assert.Equal(t, "Launch", rec.Fields["Task Name"])
	assert.Equal(t, []string{"recP1"}, rec.Fields["Project"])
	assert.Equal(t, []string{}, rec.Fields["Created By"])
	assert.Equal(t, []string{}, rec.Fields["Updates"])
	assert.NotContains(t, rec.Fields, "Description")
	assert.NotContains(t, rec.Fields, "internal")
	api.AssertExpectations(t)
}

func TestAirtable_GetRejectsUnsafeIDs(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())

	_, err := b.Get(context.Background(), model.KindTask, "rec1' OR 1=1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	api.AssertNotCalled(t, "GetRecord", mock.Anything, mock.Anything, mock.Anything)
}

func TestAirtable_GetManyBatchesAndOrders(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	ids := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("rec%02d", i))
	}
	api.On("ListRecords", ctx, "Users", recordIDFormula(ids[:50])).Return([]httpclient.AirtableRecord{
		{ID: "rec01", Fields: map[string]any{"User Name": "One"}},
		{ID: "rec00", Fields: map[string]any{"User Name": "Zero"}},
	}, nil).Once()
	api.On("ListRecords", ctx, "Users", recordIDFormula(ids[50:])).Return([]httpclient.AirtableRecord{
		{ID: "rec55", Fields: map[string]any{"User Name": "FiftyFive"}},
	}, nil).Once()

	input := append([]string{"bad id!"}, ids...)
	input = append(input, "rec00")
	got, err := b.GetMany(ctx, model.KindUser, input)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"rec00", "rec01", "rec55"}, []string{got[0].ID, got[1].ID, got[2].ID})
	api.AssertExpectations(t)
}

func TestAirtable_ListLinkedUsesInverseField(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	api.On("GetRecord", ctx, "Users", "recU1").Return(&httpclient.AirtableRecord{
		ID:     "recU1",
		Fields: map[string]any{"User Name": "Ada", "Tasks (Assigned To)": []any{"recT2", "recT1"}},
	}, nil).Once()
	api.On("ListRecords", ctx, "Tasks", recordIDFormula([]string{"recT2", "recT1"})).Return([]httpclient.AirtableRecord{
		{ID: "recT1", Fields: map[string]any{"Task Name": "one"}},
		{ID: "recT2", Fields: map[string]any{"Task Name": "two"}},
	}, nil).Once()

	got, err := b.ListLinked(ctx, model.KindTask, model.FieldAssignedTo, "recU1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "recT2", got[0].ID)
	api.AssertExpectations(t)
}

func TestAirtable_CreateSendsLinkArrays(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	want := map[string]any{
		"Task Name":   "Launch",
		"Status":      "To Do",
		"Due Date":    "2024-09-30",
		"Project":     []string{"recP1"},
		"Assigned To": []string{"recU1"},
		"Created By":  []string{"recU2"},
	}
	api.On("CreateRecord", ctx, "Tasks", want).Return(&httpclient.AirtableRecord{ID: "recNew", Fields: map[string]any{"Task Name": "Launch"}}, nil).Once()

	rec, err := b.Create(ctx, model.KindTask, model.Fields{
		"Task Name":   "Launch",
		"Due Date":    "2024-09-30",
		"Project":     "recP1",
		"Assigned To": []any{"recU1"},
		"Created By":  "recU2",
	})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
	api.AssertExpectations(t)
}

func TestAirtable_CreateUnknownReference(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	api.On("CreateRecord", ctx, "Accounts", mock.Anything).
		Return(nil, &httpclient.APIError{Status: 422, Type: "ROW_DOES_NOT_EXIST"}).Once()

	_, err := b.Create(ctx, model.KindAccount, model.Fields{"Account Name": "Acme", "Account Owner": "recGhost"})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	_, err = b.Create(ctx, model.KindAccount, model.Fields{"Account Name": "Acme", "Account Owner": "bad id"})
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)
	api.AssertNumberOfCalls(t, "CreateRecord", 1)
}

func TestAirtable_UpdateAndSecrets(t *testing.T) {
	api := &MockAirtableAPI{}
	b := NewAirtableBackend(api, zap.NewNop())
	ctx := context.Background()

	api.On("UpdateRecord", ctx, "Tasks", "recT1", map[string]any{"Status": "Done"}).
		Return(&httpclient.AirtableRecord{ID: "recT1", Fields: map[string]any{"Status": "Done"}}, nil).Once()
	rec, err := b.Update(ctx, model.KindTask, "recT1", model.Fields{"Status": "Done"})
	require.NoError(t, err)
	assert.Equal(t, "Done", rec.Fields["Status"])

	api.On("UpdateRecord", ctx, "Tasks", "recGone", mock.Anything).
		Return(nil, &httpclient.APIError{Status: 404, Type: "NOT_FOUND"}).Once()
	_, err = b.Update(ctx, model.KindTask, "recGone", model.Fields{"Status": "Done"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	digest := "abcdef0123"
	api.On("UpdateRecord", ctx, "Users", "recU1", map[string]any{"secret_key": digest}).
		Return(&httpclient.AirtableRecord{ID: "recU1"}, nil).Once()
	require.NoError(t, b.SetSecret(ctx, "recU1", digest))

	api.On("ListRecords", ctx, "Users", `{secret_key}="abcdef0123"`).
		Return([]httpclient.AirtableRecord{{ID: "recU1", Fields: map[string]any{"User Name": "Ada", "secret_key": digest}}}, nil).Once()
	user, err := b.Authenticate(ctx, digest)
	require.NoError(t, err)
	assert.Equal(t, "recU1", user.ID)
	assert.NotContains(t, user.Fields, "secret_key")
	api.AssertExpectations(t)
}

func TestRemoteErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", &httpclient.APIError{Status: 404}, apperr.ErrNotFound},
		{"missing row", &httpclient.APIError{Status: 422, Type: "ROW_DOES_NOT_EXIST"}, apperr.ErrInvalidReference},
		{"bad record id", &httpclient.APIError{Status: 422, Type: "INVALID_RECORD_ID"}, apperr.ErrInvalidReference},
		{"bad value", &httpclient.APIError{Status: 422, Type: "INVALID_VALUE_FOR_COLUMN"}, apperr.ErrConstraintViolation},
		{"rate limited", &httpclient.APIError{Status: 429}, apperr.ErrStorageUnavailable},
		{"server error", &httpclient.APIError{Status: 503}, apperr.ErrStorageUnavailable},
		{"bad token", &httpclient.APIError{Status: 401}, apperr.ErrStorageUnavailable},
		{"transport", fmt.Errorf("do request: %w", errors.New("connection refused")), apperr.ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, remoteErr(tt.err), tt.want)
		})
	}
	assert.NoError(t, remoteErr(nil))
}
