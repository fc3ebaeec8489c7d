package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/orders"
	"storefront/internal/shipping"
	"storefront/internal/webhook"
)

type Deps struct {
	JWTSecret       string
	RequestTimeout  time.Duration
	DeliveryMethods config.DeliveryMethods
	Checkout        *checkout.Builder
	Ingestor        *webhook.Ingestor
	Orders          *orders.Service
	Rates           *shipping.Gateway
	// CheckoutLimiter throttles session creation per user. Nil disables it.
	CheckoutLimiter *middleware.Limiter
	Ping            Pinger
	// Metrics serves the prometheus registry. Nil leaves /metrics unrouted.
	Metrics http.Handler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(), middleware.Metrics())

	r.GET("/healthz", Health(d.Ping))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	r.POST("/webhook", StripeWebhook(d.Ingestor, d.RequestTimeout))

	user := r.Group("/")
	user.Use(middleware.UserAuth(d.JWTSecret))
	{
		checkoutChain := []gin.HandlerFunc{}
		if d.CheckoutLimiter != nil {
			checkoutChain = append(checkoutChain, middleware.RateLimit(d.CheckoutLimiter))
		}
		checkoutChain = append(checkoutChain, CreateCheckout(d.Checkout, d.RequestTimeout))
		user.POST("/checkout", checkoutChain...)

		user.POST("/order/:id/relay", AttachRelay(d.Orders, d.RequestTimeout))
		user.GET("/order-by-session-id", GetOrderBySessionID(d.Orders, d.RequestTimeout))
		user.GET("/order/:id", GetOrder(d.Orders, d.RequestTimeout))
		user.GET("/orders", GetMyOrders(d.Orders, d.RequestTimeout))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(d.JWTSecret))
	{
		admin.GET("/orders", GetAllOrders(d.Orders, d.RequestTimeout))
		admin.GET("/order/:id", GetOrderAdmin(d.Orders, d.RequestTimeout))
		admin.PUT("/orders/:orderId/status", UpdateOrderStatus(d.Orders, d.RequestTimeout))

		admin.GET("/shippings-rates", GetShippingRates(d.Rates, d.RequestTimeout))
		admin.POST("/shipping-rate", CreateShippingRate(d.Rates, d.DeliveryMethods, d.RequestTimeout))
		admin.PUT("/shipping-rate/:id", UpdateShippingRate(d.Rates, d.RequestTimeout))
	}

	return r
}
