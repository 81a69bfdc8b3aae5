package controllers

import (
	"net/http"

	"foodorder/pkg/resp"
	"foodorder/services"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

type MyUserController struct {
	Service *services.UserService
}

func NewMyUserController(s *services.UserService) *MyUserController {
	return &MyUserController{Service: s}
}

// POST /api/my/user
// Called by the frontend after every sign-in; only the first call creates.
func (ctl *MyUserController) Create(c *gin.Context) {
	sub, ok := utils.CurrentSubject(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	var in services.CreateUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	u, created, err := ctl.Service.EnsureUser(c.Request.Context(), sub, &in)
	if err != nil {
		resp.Fail(c, err, "Error creating user")
		return
	}
	if !created {
		resp.OK(c, u)
		return
	}
	resp.Created(c, u)
}

// GET /api/my/user
func (ctl *MyUserController) Get(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	u, err := ctl.Service.Get(c.Request.Context(), ident)
	if err != nil {
		resp.Fail(c, err, "Error fetching user")
		return
	}
	resp.OK(c, u)
}

// PUT /api/my/user
func (ctl *MyUserController) Update(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	var in services.UpdateUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user details", "errors": err.Error()})
		return
	}
	u, err := ctl.Service.UpdateProfile(c.Request.Context(), ident, &in)
	if err != nil {
		resp.Fail(c, err, "Error updating user")
		return
	}
	resp.OK(c, u)
}
