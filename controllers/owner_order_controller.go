package controllers

import (
	"foodorder/pkg/resp"
	"foodorder/services"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

type OwnerOrderController struct {
	Service *services.OrderService
}

func NewOwnerOrderController(s *services.OrderService) *OwnerOrderController {
	return &OwnerOrderController{Service: s}
}

type updateStatusIn struct {
	Status string `json:"status" binding:"required"`
}

// GET /api/my/restaurant/order
func (ctl *OwnerOrderController) List(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	out, err := ctl.Service.ListForOwner(c.Request.Context(), ident)
	if err != nil {
		resp.Fail(c, err, "something went wrong")
		return
	}
	resp.OK(c, out)
}

// PATCH /api/my/restaurant/order/:orderId/status
func (ctl *OwnerOrderController) UpdateStatus(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	var in updateStatusIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, "status is required")
		return
	}
	out, err := ctl.Service.UpdateStatusByOwner(c.Request.Context(), ident, c.Param("orderId"), in.Status)
	if err != nil {
		resp.Fail(c, err, "unable to update order status")
		return
	}
	resp.OK(c, out)
}
