package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/webhook"
)

const maxWebhookBody = 1 << 20

// StripeWebhook acknowledges verified events with 200 so the provider stops
// redelivering, including sessions that can never become an order. Anything
// else is answered with an error status and retried.
func StripeWebhook(ingestor *webhook.Ingestor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /webhook"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(c, http.StatusRequestEntityTooLarge, route, "payload too large")
				return
			}
			respondWithError(c, http.StatusBadRequest, route, "unreadable body")
			return
		}

		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		outcome, err := ingestor.Ingest(ctx, payload, c.GetHeader(webhook.SignatureHeader))
		if err != nil {
			respondWithAppError(c, route, err)
			return
		}

		resp := gin.H{"received": true, "ignored": outcome.Ignored}
		if outcome.Unprocessable {
			resp["unprocessable"] = true
		}
		c.JSON(http.StatusOK, resp)
	}
}
