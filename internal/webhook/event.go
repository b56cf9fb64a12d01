package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/example/stripe-payments/internal/stripegw"
)

// Event is the Stripe webhook envelope. Raw keeps the body exactly as
// delivered so the audit trail stores what Stripe actually sent.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`

	Raw []byte `json:"-"`
}

// ParseEvent decodes a webhook body. A body that is not JSON or carries no
// type is not a Stripe event.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("webhook body carries no event type")
	}
	ev.Raw = body
	return &ev, nil
}

// ObjectID returns the id of the object nested under data.object, or "".
func (e *Event) ObjectID() string {
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return ""
	}
	return obj.ID
}

// chargeObject is the slice of a charge payload the dispatcher inspects.
type chargeObject struct {
	ID       string `json:"id"`
	Captured bool   `json:"captured"`
}

func (e *Event) charge() (chargeObject, error) {
	var ch chargeObject
	if err := json.Unmarshal(e.Data.Object, &ch); err != nil {
		return ch, fmt.Errorf("decode charge object: %w", err)
	}
	return ch, nil
}

// sourceObject is the slice of a source payload the dispatcher inspects.
type sourceObject struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (e *Event) source() (sourceObject, error) {
	var src sourceObject
	if err := json.Unmarshal(e.Data.Object, &src); err != nil {
		return src, fmt.Errorf("decode source object: %w", err)
	}
	return src, nil
}

func (e *Event) checkoutSession() (stripegw.CheckoutSession, error) {
	var cs stripegw.CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &cs); err != nil {
		return cs, fmt.Errorf("decode checkout session: %w", err)
	}
	return cs, nil
}
