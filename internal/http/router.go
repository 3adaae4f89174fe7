package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/http/controller"
	"github.com/iyhunko/hifi-storefront/internal/http/middleware"
)

// Controllers groups the handlers mounted by InitRouter.
type Controllers struct {
	General  *controller.Controller
	Sessions *controller.SessionController
	Products *controller.ProductController
	Orders   *controller.OrderController
	Images   *controller.ImageController
}

func InitRouter(server *gin.Engine, httpMiddleware *middleware.Middleware, ctrs Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS())

	server.GET("/ping", ctrs.General.Ping)

	sessions := server.Group("/session")
	{
		sessions.POST("", ctrs.Sessions.Login)
		sessions.GET("", ctrs.Sessions.Status)
		sessions.DELETE("", ctrs.Sessions.Logout)
	}

	gated := server.Group("", httpMiddleware.RequireSession())

	products := gated.Group("/products")
	{
		products.POST("", ctrs.Products.CreateProduct)
		products.GET("", ctrs.Products.ListProducts)
		products.GET("/:id", ctrs.Products.GetProduct)
		products.DELETE("/:id", ctrs.Products.DeleteProduct)
	}

	orders := gated.Group("/orders")
	{
		orders.POST("", ctrs.Orders.PlaceOrder)
		orders.GET("", ctrs.Orders.ListOrders)
		orders.DELETE("/:id", ctrs.Orders.CancelOrder)
	}

	gated.POST("/images", ctrs.Images.UploadImage)

	return server
}
