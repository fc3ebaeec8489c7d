package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/shipping"
)

type createShippingRateRequest struct {
	DisplayName    string            `json:"displayName" binding:"required"`
	Amount         *float64          `json:"amount" binding:"required,gte=0"`
	DeliveryMethod string            `json:"deliveryMethod" binding:"required"`
	Metadata       map[string]string `json:"metadata"`
}

type updateShippingRateRequest struct {
	Active   *bool             `json:"active"`
	Metadata map[string]string `json:"metadata"`
}

func GetShippingRates(gateway *shipping.Gateway, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/shippings-rates"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		rates, err := gateway.ListActive(ctx)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rates": rates})
	}
}

func CreateShippingRate(gateway *shipping.Gateway, methods config.DeliveryMethods, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/shipping-rate"
		defer handlePanic(c, route)

		var req createShippingRateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if _, ok := methods.Lookup(req.DeliveryMethod); !ok {
			respondWithAppError(c, route, apperr.Validation("unknown delivery method"))
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		rate, err := gateway.Create(ctx, shipping.CreateInput{
			DisplayName:    req.DisplayName,
			Amount:         *req.Amount,
			DeliveryMethod: req.DeliveryMethod,
			Metadata:       req.Metadata,
		})
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, rate)
	}
}

// UpdateShippingRate archives the rate when active is false. Archived rates
// stay resolvable for orders that were charged with them.
func UpdateShippingRate(gateway *shipping.Gateway, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/shipping-rate/:id"
		defer handlePanic(c, route)

		var req updateShippingRateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		id := c.Param("id")
		var (
			rate models.ShippingRate
			err  error
		)
		switch {
		case req.Active != nil && !*req.Active:
			rate, err = gateway.ArchiveWithMetadata(ctx, id, req.Metadata)
		case req.Active != nil && *req.Active && len(req.Metadata) == 0:
			err = apperr.Validation("archived rates cannot be reactivated, create a new rate")
		default:
			rate, err = gateway.UpdateMetadata(ctx, id, req.Metadata)
		}
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, rate)
	}
}
