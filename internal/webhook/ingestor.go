package webhook

import (
	"context"
	"log"

	"storefront/internal/apperr"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// Materializer turns a completed checkout session into an order.
type Materializer interface {
	Materialize(ctx context.Context, sessionID string) (models.Order, bool, error)
}

type Ingestor struct {
	verifier     Verifier
	materializer Materializer
}

func NewIngestor(verifier Verifier, materializer Materializer) *Ingestor {
	return &Ingestor{verifier: verifier, materializer: materializer}
}

// Outcome reports what happened to a verified event. Unprocessable marks a
// session whose content can never become an order; it is acknowledged so the
// provider stops redelivering it.
type Outcome struct {
	Event         Event
	Ignored       bool
	Unprocessable bool
	Order         *models.Order
	Created       bool
}

// Ingest verifies the signature over the raw payload before anything reads
// it, then dispatches on the event variant.
func (in *Ingestor) Ingest(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	if err := in.verifier.Verify(payload, signature); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		log.Printf("[WEBHOOK] [ERROR] signature rejected: %v", err)
		return Outcome{}, err
	}

	evt, err := ParseEvent(payload)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "malformed").Inc()
		log.Printf("[WEBHOOK] [ERROR] verified event could not be decoded: %v", err)
		return Outcome{}, err
	}

	switch e := evt.(type) {
	case CheckoutCompleted:
		order, created, err := in.materializer.Materialize(ctx, e.SessionID)
		if apperr.Is(err, apperr.KindValidation) {
			metrics.WebhookEvents.WithLabelValues(e.EventType(), "unprocessable").Inc()
			log.Printf("[WEBHOOK] [ERROR] event %s session %s dropped, needs manual review: %v", e.ID, e.SessionID, err)
			return Outcome{Event: e, Unprocessable: true}, nil
		}
		if err != nil {
			metrics.WebhookEvents.WithLabelValues(e.EventType(), "failed").Inc()
			log.Printf("[WEBHOOK] [ERROR] event %s session %s: %v", e.ID, e.SessionID, err)
			return Outcome{Event: e}, err
		}
		metrics.WebhookEvents.WithLabelValues(e.EventType(), "processed").Inc()
		return Outcome{Event: e, Order: &order, Created: created}, nil
	case Ignored:
		metrics.WebhookEvents.WithLabelValues(e.Type, "ignored").Inc()
		log.Printf("[WEBHOOK] [INFO] event %s of type %s acknowledged without action", e.ID, e.Type)
		return Outcome{Event: e, Ignored: true}, nil
	}
	return Outcome{}, apperr.Internal("unhandled event variant", nil)
}
