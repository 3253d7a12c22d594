package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/serializer"
	"github.com/recordgraph/recordgraph/internal/modules/service"
)

const (
	// CtxKind holds the model.Kind a route group serves.
	CtxKind = "kind"
	// CtxUser holds the authenticated caller as *model.Record.
	CtxUser = "user"
)

type RecordHandler struct {
	svc service.RecordService
}

func NewRecordHandler(s service.RecordService) *RecordHandler {
	return &RecordHandler{svc: s}
}

// WithKind pins the entity kind for every route of a group.
func WithKind(k model.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxKind, k)
		c.Next()
	}
}

type GetRecordsReq struct {
	IDs []string `form:"ids" json:"ids" example:"tsk_4Fh2,tsk_9Kd1"`
}

type ProjectUpdatesReq struct {
	Date string `form:"date" json:"date" example:"2024-05-01"`
}

type MineReq struct {
	Role string `form:"role" json:"role" example:"assigned"`
}

func writeErr(c *gin.Context, err error) {
	status, res := serializer.RecordErr(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, res)
}

func kindOf(c *gin.Context) model.Kind {
	k, _ := c.MustGet(CtxKind).(model.Kind)
	return k
}

func callerOf(c *gin.Context) (*model.Record, bool) {
	u, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	rec, ok := u.(*model.Record)
	return rec, ok
}

// splitIDs accepts ids=a,b and ids=a&ids=b.
func splitIDs(raw []string) []string {
	var out []string
	for _, part := range raw {
		for _, id := range strings.Split(part, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// bindFields reads a field payload. Both a bare field map and {"fields": {...}} are accepted.
func bindFields(c *gin.Context) (model.Fields, error) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}
	if len(body) == 1 {
		if inner, ok := body["fields"].(map[string]any); ok {
			return model.Fields(inner), nil
		}
	}
	return model.Fields(body), nil
}

// GetRecords godoc
//
//	@Summary		Get records by id
//	@Description	Get the records of the given external ids in request order. Unknown ids are skipped.
//	@Tags			record
//	@Accept			json
//	@Produce		json
//	@Param			kind	path	string	true	"Entity kind"	Enums(users, accounts, projects, tasks, updates)
//	@Param			ids		query	string	true	"Comma separated external ids"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Record}
//	@Router			/{kind} [get]
func (h *RecordHandler) GetRecords(c *gin.Context) {
	req := GetRecordsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	ids := splitIDs(req.IDs)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("ids is required", nil))
		return
	}

	recs, err := h.svc.GetMany(c.Request.Context(), kindOf(c), ids)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: recs})
}

// GetRecord godoc
//
//	@Summary		Get record
//	@Description	Get one record by its external id
//	@Tags			record
//	@Accept			json
//	@Produce		json
//	@Param			kind	path	string	true	"Entity kind"	Enums(users, accounts, projects, tasks, updates)
//	@Param			id		path	string	true	"External id"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Record}
//	@Router			/{kind}/by-external-id/{id} [get]
func (h *RecordHandler) GetRecord(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), kindOf(c), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: rec})
}

// CreateRecord godoc
//
//	@Summary		Create record
//	@Description	Create a record from external field names. Links take an external id or a list of one.
//	@Description	The caller becomes the owner when the kind has an owner field and the payload omits it.
//	@Tags			record
//	@Accept			json
//	@Produce		json
//	@Param			kind	path	string			true	"Entity kind"	Enums(users, accounts, projects, tasks, updates)
//	@Param			payload	body	model.Fields	true	"Field payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Record}
//	@Router			/{kind} [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	caller, ok := callerOf(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), caller.ID, kindOf(c), fields)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: rec})
}

// UpdateRecord godoc
//
//	@Summary		Update record
//	@Description	Apply a partial field update to a record
//	@Tags			record
//	@Accept			json
//	@Produce		json
//	@Param			kind	path	string			true	"Entity kind"	Enums(users, accounts, projects, tasks, updates)
//	@Param			id		path	string			true	"External id"
//	@Param			payload	body	model.Fields	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Record}
//	@Router			/{kind}/{id} [patch]
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	caller, ok := callerOf(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), caller.ID, kindOf(c), c.Param("id"), fields)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: rec})
}

// ExportRecords godoc
//
//	@Summary		Export records
//	@Description	Snapshot every record of a kind to object storage and return a presigned download link
//	@Tags			record
//	@Produce		json
//	@Param			kind	path	string	true	"Entity kind"	Enums(users, accounts, projects, tasks, updates)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ExportResult}
//	@Router			/{kind}/export [post]
func (h *RecordHandler) ExportRecords(c *gin.Context) {
	res, err := h.svc.Export(c.Request.Context(), kindOf(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: res})
}

// GetMe godoc
//
//	@Summary		Get caller
//	@Description	Get the authenticated user's record
//	@Tags			me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Record}
//	@Router			/me [get]
func (h *RecordHandler) GetMe(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: caller})
}

// GetMine godoc
//
//	@Summary		List caller's records
//	@Description	List the records owned by the caller. For tasks, role selects assigned (default) or created.
//	@Tags			me
//	@Produce		json
//	@Param			kind	path	string	true	"Entity kind"	Enums(accounts, projects, tasks, updates)
//	@Param			role	query	string	false	"assigned or created, tasks only"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Record}
//	@Router			/me/{kind} [get]
func (h *RecordHandler) GetMine(c *gin.Context) {
	kind, ok := model.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, serializer.Err(http.StatusNotFound, "unknown kind", nil))
		return
	}
	req := MineReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	caller, ok := callerOf(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	recs, err := h.svc.Mine(c.Request.Context(), caller.ID, kind, req.Role)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: recs})
}

// GetDirectory godoc
//
//	@Summary		List users
//	@Description	List every user ordered by name
//	@Tags			record
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Record}
//	@Router			/users/all [get]
func (h *RecordHandler) GetDirectory(c *gin.Context) {
	recs, err := h.svc.Directory(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: recs})
}

// GetProjectUpdates godoc
//
//	@Summary		List project updates
//	@Description	List the updates of a project, optionally only those of one date
//	@Tags			record
//	@Produce		json
//	@Param			id		path	string	true	"Project external id"
//	@Param			date	query	string	false	"YYYY-MM-DD"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Record}
//	@Router			/projects/by-external-id/{id}/updates [get]
func (h *RecordHandler) GetProjectUpdates(c *gin.Context) {
	req := ProjectUpdatesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	recs, err := h.svc.ProjectUpdates(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: recs})
}
