package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/modules/serializer"
	"github.com/recordgraph/recordgraph/internal/modules/service"
)

type AdminHandler struct {
	svc service.RecordService
}

func NewAdminHandler(s service.RecordService) *AdminHandler {
	return &AdminHandler{svc: s}
}

type CreateUserReq struct {
	UserName string `form:"user_name" json:"user_name" binding:"required" example:"Ada Lovelace"`
}

// CreateUser godoc
//
//	@Summary		Create user
//	@Description	Create a user. Requires the root bearer token.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateUserReq	true	"CreateUser payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Record}
//	@Router			/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	req := CreateUserReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	rec, err := h.svc.CreateUser(c.Request.Context(), req.UserName)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: rec})
}

// IssueSecretKey godoc
//
//	@Summary		Issue user secret key
//	@Description	Generate a new bearer secret for a user. The key is shown once; any previous key stops working.
//	@Tags			admin
//	@Produce		json
//	@Param			id	path	string	true	"User external id"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.IssuedSecret}
//	@Router			/admin/users/{id}/secret-key [post]
func (h *AdminHandler) IssueSecretKey(c *gin.Context) {
	out, err := h.svc.IssueSecret(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
