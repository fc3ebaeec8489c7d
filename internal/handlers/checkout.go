package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/models"
)

// Quantity is bounded by checkout.MaxLineQuantity.
type checkoutItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,lte=999"`
}

type relayRequest struct {
	ID      string `json:"id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type createCheckoutRequest struct {
	Items          []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod string                `json:"deliveryMethod" binding:"required"`
	Relay          *relayRequest         `json:"relay"`
}

func CreateCheckout(builder *checkout.Builder, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req createCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items := make([]checkout.CartItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, checkout.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		in := checkout.Request{
			UserID:         principal.UserID,
			Email:          principal.Email,
			Items:          items,
			DeliveryMethod: req.DeliveryMethod,
		}
		if req.Relay != nil {
			in.Relay = &models.Relay{ID: req.Relay.ID, Name: req.Relay.Name, Address: req.Relay.Address}
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		res, err := builder.Create(ctx, in)
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sessionId":   res.SessionID,
			"redirectUrl": res.RedirectURL,
			"subtotal":    res.Subtotal,
		})
	}
}
