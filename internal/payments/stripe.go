// Package payments handles the payment provider's signed webhook events.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"calshop/internal/domain"
)

// DefaultTolerance bounds how stale a signed webhook may be.
const DefaultTolerance = 5 * time.Minute

// CheckoutSessionCompleted is the only event type the service acts on.
const CheckoutSessionCompleted = "checkout.session.completed"

// Verifier checks Stripe-style webhook signatures: the header carries a
// timestamp and one or more HMAC-SHA256 signatures over "timestamp.payload".
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Verify validates the signature header against the raw payload. All
// failures map to domain.ErrBadSignature so handlers answer uniformly.
func (v *Verifier) Verify(payload []byte, header string) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	ts := time.Unix(timestamp, 0)
	if age := v.now().Sub(ts); age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrBadSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: no matching v1 signature", domain.ErrBadSignature)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", domain.ErrBadSignature)
	}
	var (
		timestamp  int64
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", domain.ErrBadSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: header missing t or v1", domain.ErrBadSignature)
	}
	return timestamp, signatures, nil
}

// Event is the envelope of a webhook delivery.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the slice of a completed checkout session the service
// needs: who paid, for what product, shipped where.
type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentIntent   string            `json:"payment_intent"`
	CustomerDetails customerDetails   `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
	ShippingDetails shippingDetails   `json:"shipping_details"`
}

type customerDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type shippingDetails struct {
	Name    string `json:"name"`
	Address struct {
		Country    string `json:"country"`
		State      string `json:"state"`
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		PostalCode string `json:"postal_code"`
	} `json:"address"`
}

// ParseEvent decodes the webhook envelope.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: malformed event payload", domain.ErrInput)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: event missing type", domain.ErrInput)
	}
	return &ev, nil
}

// ParseCheckoutSession decodes the session object of a completed checkout.
func ParseCheckoutSession(ev *Event) (*CheckoutSession, error) {
	if ev.Type != CheckoutSessionCompleted {
		return nil, fmt.Errorf("%w: unexpected event type %q", domain.ErrInput, ev.Type)
	}
	var cs CheckoutSession
	if err := json.Unmarshal(ev.Data.Object, &cs); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session", domain.ErrInput)
	}
	return &cs, nil
}

// ProjectToken returns the project reference carried in session metadata.
func (cs *CheckoutSession) ProjectToken() string {
	return cs.Metadata["project_token"]
}

// ProductType returns the ordered product, defaulting to the 2026 wall
// calendar when checkout omitted it.
func (cs *CheckoutSession) ProductType() string {
	if t := cs.Metadata["product_type"]; t != "" {
		return t
	}
	return "calendar_2026"
}

// ShippingAddress converts the session's shipping block to the domain form,
// splitting the single shipping name into first and last.
func (cs *CheckoutSession) ShippingAddress() domain.ShippingAddress {
	first, last := splitName(cs.ShippingDetails.Name)
	return domain.ShippingAddress{
		FirstName: first,
		LastName:  last,
		Phone:     cs.CustomerDetails.Phone,
		Country:   cs.ShippingDetails.Address.Country,
		Region:    cs.ShippingDetails.Address.State,
		Address1:  cs.ShippingDetails.Address.Line1,
		Address2:  cs.ShippingDetails.Address.Line2,
		City:      cs.ShippingDetails.Address.City,
		Zip:       cs.ShippingDetails.Address.PostalCode,
	}
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
