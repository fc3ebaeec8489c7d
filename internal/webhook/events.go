package webhook

import (
	"encoding/json"
	"strings"

	"storefront/internal/apperr"
)

// TypeCheckoutCompleted is the only event that leads to an order.
const TypeCheckoutCompleted = "checkout.session.completed"

// Event is the closed set of events this service understands. Anything the
// decoders table does not name becomes Ignored.
type Event interface {
	EventID() string
	EventType() string
	event()
}

// CheckoutCompleted means the buyer finished the hosted payment page.
type CheckoutCompleted struct {
	ID        string
	SessionID string
}

func (e CheckoutCompleted) EventID() string   { return e.ID }
func (e CheckoutCompleted) EventType() string { return TypeCheckoutCompleted }
func (CheckoutCompleted) event()              {}

// Ignored is acknowledged so the provider stops retrying it.
type Ignored struct {
	ID   string
	Type string
}

func (e Ignored) EventID() string   { return e.ID }
func (e Ignored) EventType() string { return e.Type }
func (Ignored) event()              {}

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type decoder func(env envelope) (Event, error)

var decoders = map[string]decoder{
	TypeCheckoutCompleted: decodeCheckoutCompleted,
}

// ParseEvent decodes a payload that has already passed Verify.
func ParseEvent(payload []byte) (Event, error) {
	if len(payload) == 0 {
		return nil, apperr.Validation(errEmptyPayload.Error())
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperr.Validation("malformed event")
	}
	if strings.TrimSpace(env.Type) == "" {
		return nil, apperr.Validation("event has no type")
	}

	decode, known := decoders[env.Type]
	if !known {
		return Ignored{ID: env.ID, Type: env.Type}, nil
	}
	return decode(env)
}

func decodeCheckoutCompleted(env envelope) (Event, error) {
	var object struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	if err := json.Unmarshal(env.Data.Object, &object); err != nil {
		return nil, apperr.Validation("malformed checkout session")
	}
	if object.ID == "" {
		return nil, apperr.Validation("checkout session has no id")
	}
	return CheckoutCompleted{ID: env.ID, SessionID: object.ID}, nil
}
