package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/orders"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func GetAllOrders(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		status := models.OrderStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		result, err := svc.List(ctx, status, page, limit)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetOrderAdmin(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/order/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		order, err := svc.Get(ctx, c.Param("id"))
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderStatus(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:orderId/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		status := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		order, err := svc.TransitionStatus(ctx, c.Param("orderId"), status)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
