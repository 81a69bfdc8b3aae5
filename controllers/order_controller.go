package controllers

import (
	"net/http"

	"foodorder/pkg/resp"
	"foodorder/services"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(s *services.OrderService) *OrderController {
	return &OrderController{Service: s}
}

// POST /api/order/checkout/create-checkout-session
func (ctl *OrderController) CreateCheckoutSession(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	var req services.CheckoutSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	out, err := ctl.Service.CreateCheckoutSession(c.Request.Context(), ident, &req)
	if err != nil {
		resp.Fail(c, err, "Error creating stripe session")
		return
	}
	resp.OK(c, out)
}

// POST /api/order/checkout/webhook
// Authenticated by the provider signature, not by a user token.
func (ctl *OrderController) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		resp.BadRequest(c, "unreadable body")
		return
	}
	if err := ctl.Service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		resp.Fail(c, err, "Error handling webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /api/order
func (ctl *OrderController) List(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	out, err := ctl.Service.ListForUser(c.Request.Context(), ident)
	if err != nil {
		resp.Fail(c, err, "something went wrong")
		return
	}
	resp.OK(c, out)
}

// GET /api/order/:orderId
func (ctl *OrderController) Detail(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}
	out, err := ctl.Service.DetailForUser(c.Request.Context(), ident, c.Param("orderId"))
	if err != nil {
		resp.Fail(c, err, "something went wrong")
		return
	}
	resp.OK(c, out)
}
