package handlers

import (
	"fmt"
	"net/http"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/models"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the user resource plus credential verification.
type UserHandler struct {
	*Resource[models.User, models.UserPatch]
	usersSvc *users.Service
}

func NewUserHandler(u *users.Service, pager pagination.Config) *UserHandler {
	return &UserHandler{
		Resource: NewResource[models.User, models.UserPatch]("user", u, pager),
		usersSvc: u,
	}
}

// Register routes under /user
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	g := h.Resource.Register(rg)
	g.POST("/verify", h.Verify)
}

// Verify answers true or false for an {email, password} pair.
func (h *UserHandler) Verify(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadBody, err))
		return
	}
	ok, err := h.usersSvc.Verify(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}
