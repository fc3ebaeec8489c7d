package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/orders"
)

// AttachRelay answers 404 until the webhook has materialized the order; the
// relay picker retries on that status.
func AttachRelay(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order/:id/relay"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req relayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		order, err := svc.AttachRelay(ctx, orders.RelayInput{
			SessionID: c.Param("id"),
			UserID:    principal.UserID,
			Relay:     models.Relay{ID: req.ID, Name: req.Name, Address: req.Address},
		})
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "relay": order.Relay})
	}
}

func GetOrderBySessionID(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order-by-session-id"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		order, err := svc.GetBySessionForUser(ctx, c.Query("sessionId"), principal.UserID)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/:id"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		order, err := svc.GetForUser(ctx, c.Param("id"), principal.UserID)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetMyOrders(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		result, err := svc.ListForUser(ctx, principal.UserID, page, limit)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
