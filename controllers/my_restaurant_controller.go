package controllers

import (
	"net/http"

	"foodorder/pkg/resp"
	"foodorder/services"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

type MyRestaurantController struct {
	Service *services.RestaurantService
}

func NewMyRestaurantController(s *services.RestaurantService) *MyRestaurantController {
	return &MyRestaurantController{Service: s}
}

// GET /api/my/restaurant
func (ctl *MyRestaurantController) Get(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	r, err := ctl.Service.GetMine(c.Request.Context(), ident)
	if err != nil {
		resp.Fail(c, err, "Error fetching restaurant")
		return
	}
	resp.OK(c, r)
}

// POST /api/my/restaurant (multipart, imageFile required)
func (ctl *MyRestaurantController) Create(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	in, err := parseRestaurantForm(c)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	img, closer, err := formImage(c)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	r, err := ctl.Service.CreateMine(c.Request.Context(), ident, in, img)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	c.JSON(http.StatusCreated, r)
}

// PUT /api/my/restaurant (multipart, imageFile optional)
func (ctl *MyRestaurantController) Update(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	in, err := parseRestaurantForm(c)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	img, closer, err := formImage(c)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	r, err := ctl.Service.UpdateMine(c.Request.Context(), ident, in, img)
	if err != nil {
		resp.Fail(c, err, "Something went wrong")
		return
	}
	resp.OK(c, r)
}
