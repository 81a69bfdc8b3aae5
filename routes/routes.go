package routes

import (
	"net/http"

	"foodorder/cache"
	"foodorder/configs"
	"foodorder/controllers"
	"foodorder/events"
	"foodorder/imagestore"
	"foodorder/middlewares"
	"foodorder/payment"
	"foodorder/repository"
	"foodorder/services"
	"foodorder/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config   *configs.Config
	DB       *gorm.DB
	Verifier middlewares.TokenVerifier
	Gateway  payment.Gateway
	Images   imagestore.Uploader
	Bus      events.Bus
	Idem     cache.Idempotency
	Hub      *ws.OrderHub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "health OK!"}) })

	// Services
	userSvc := services.NewUserService(repository.NewUserRepository(d.DB))
	restSvc := services.NewRestaurantService(repository.NewRestaurantRepository(d.DB), d.Images)
	orderSvc := services.NewOrderService(services.OrderServiceDeps{
		DB:          d.DB,
		Gateway:     d.Gateway,
		Bus:         d.Bus,
		Idem:        d.Idem,
		Currency:    d.Config.Currency,
		FrontendURL: d.Config.FrontendURL,
	})

	// Controllers
	myUserCtrl := controllers.NewMyUserController(userSvc)
	myRestCtrl := controllers.NewMyRestaurantController(restSvc)
	restCtrl := controllers.NewRestaurantController(restSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	ownerOrderCtrl := controllers.NewOwnerOrderController(orderSvc)

	jwtCheck := middlewares.JWTCheck(d.Verifier)
	jwtParse := middlewares.JWTParse(userSvc)

	api := r.Group("/api")

	// Current user; creation only needs a valid token
	myUser := api.Group("/my/user", jwtCheck)
	{
		myUser.POST("", myUserCtrl.Create)
		myUser.GET("", jwtParse, myUserCtrl.Get)
		myUser.PUT("", jwtParse, myUserCtrl.Update)
	}

	// Owner
	myRest := api.Group("/my/restaurant", jwtCheck, jwtParse)
	{
		myRest.GET("", myRestCtrl.Get)
		myRest.POST("", myRestCtrl.Create)
		myRest.PUT("", myRestCtrl.Update)
		myRest.GET("/order", ownerOrderCtrl.List)
		myRest.PATCH("/order/:orderId/status", ownerOrderCtrl.UpdateStatus)
	}

	// Public
	api.GET("/restaurant/search/:city", restCtrl.Search)
	api.GET("/restaurant/:id", restCtrl.Get)

	// Orders; the webhook is authenticated by its signature
	api.POST("/order/checkout/webhook", orderCtrl.Webhook)
	orders := api.Group("/order", jwtCheck, jwtParse)
	{
		orders.POST("/checkout/create-checkout-session", orderCtrl.CreateCheckoutSession)
		orders.GET("", orderCtrl.List)
		orders.GET("/:orderId", orderCtrl.Detail)
	}

	if d.Hub != nil {
		r.GET("/ws/orders", middlewares.WSAuthMiddleware(d.Verifier, userSvc), d.Hub.HandleWebSocket)
	}
}
