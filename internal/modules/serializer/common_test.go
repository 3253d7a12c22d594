package serializer

import (
	"errors"
	"net/http"
	"testing"

	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

func TestRecordErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperr.NotFound("tasks record not found"), http.StatusNotFound, "tasks record not found"},
		{"invalid reference", apperr.InvalidReference("field %q references an unknown users record", "Assigned To"), http.StatusBadRequest, `field "Assigned To" references an unknown users record`},
		{"constraint", apperr.ConstraintViolation("unknown field %q", "Color"), http.StatusBadRequest, `unknown field "Color"`},
		{"unavailable hides cause", apperr.Unavailable(errors.New("dial tcp 10.0.0.5:5432: connection refused")), http.StatusServiceUnavailable, "storage unavailable, retry later"},
		{"internal hides cause", apperr.Internal("duplicate key", errors.New("UNIQUE constraint failed: users.record_id")), http.StatusInternalServerError, "internal error"},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := RecordErr(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, res.Code)
			assert.Equal(t, tt.wantMsg, res.Msg)
			assert.Empty(t, res.Error)
		})
	}
}
