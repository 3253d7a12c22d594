package serializer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger sets the logger used to record error causes.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// RecordErr maps a record error to its HTTP status and envelope. Only the
// caller-safe message is returned; the cause goes to the log.
func RecordErr(err error) (int, Response) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"
	switch kind {
	case apperr.KindNotFound:
		status, msg = http.StatusNotFound, apperr.Message(err)
	case apperr.KindInvalidReference, apperr.KindConstraintViolation:
		status, msg = http.StatusBadRequest, apperr.Message(err)
	case apperr.KindStorageUnavailable:
		status, msg = http.StatusServiceUnavailable, "storage unavailable, retry later"
	}

	if status >= http.StatusInternalServerError {
		log.Error("record request failed", zap.String("kind", kind.String()), zap.Error(err))
	} else {
		log.Warn("record request rejected", zap.String("kind", kind.String()), zap.Error(errors.Unwrap(err)), zap.String("msg", msg))
	}
	return status, Response{Code: status, Msg: msg}
}
