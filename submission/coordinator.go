// Package submission turns a valid order draft into a created order.
package submission

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kendall-kelly/hantverk-dashboard/apiclient"
	"github.com/kendall-kelly/hantverk-dashboard/draft"
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/pricing"
	"github.com/kendall-kelly/hantverk-dashboard/utils"
)

// GenericFailureMessage is reported when the backend rejects an order without a detail
const GenericFailureMessage = "Kunde inte skapa order"

// ErrInFlight is returned while a previous Submit has not finished
var ErrInFlight = errors.New("an order submission is already in progress")

// OrderCreator sends the creation request. *apiclient.Client implements it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error)
}

// Refresher reloads reference data after a successful submission. *refdata.Cache implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Error is a submission the backend rejected or that never reached it
type Error struct {
	// Message is the backend detail when one was sent, otherwise GenericFailureMessage
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome describes the result of Submit.
// Draft is what the form should show next: a fresh draft after success, the submitted
// draft unchanged after any failure.
type Outcome struct {
	OrderID string
	Total   float64
	Draft   draft.Draft
	// RefreshErr is set when the order was created but reloading reference data failed
	RefreshErr error
}

// Message is the confirmation shown after a successful submission
func (o Outcome) Message() string {
	return fmt.Sprintf("Order skapad. Totalt: %s kr", pricing.FormatFloat(o.Total))
}

// Coordinator submits drafts one at a time.
// Lifecycle: Editing -> Submitting -> Success (draft reset) or Failed (draft kept) -> Editing.
// A failed draft resubmitted unchanged reuses its Idempotency-Key, so the backend replays
// an order it already created instead of creating a second one.
type Coordinator struct {
	orders     OrderCreator
	refresher  Refresher
	log        *logger.Logger
	submitting atomic.Bool
	newKey     func() string

	// guarded by submitting
	pendingKey         string
	pendingFingerprint string
}

// NewCoordinator wires a coordinator. refresher may be nil when nothing needs reloading.
func NewCoordinator(orders OrderCreator, refresher Refresher, log *logger.Logger) *Coordinator {
	return &Coordinator{
		orders:    orders,
		refresher: refresher,
		log:       log,
		newKey:    uuid.NewString,
	}
}

// Submitting reports whether a submission is in flight, e.g. to disable the save button
func (c *Coordinator) Submitting() bool {
	return c.submitting.Load()
}

// Submit validates d and, when valid, sends exactly one creation request.
// Invalid drafts return a *draft.ValidationError without contacting the backend.
// Backend or transport failures return an *Error. There are no retries.
func (c *Coordinator) Submit(ctx context.Context, d draft.Draft) (Outcome, error) {
	failed := Outcome{Draft: d}

	if err := draft.Validate(d); err != nil {
		var validationErr *draft.ValidationError
		if errors.As(err, &validationErr) {
			c.log.Debug(c.log.WithField(ctx, "reason", validationErr.Reason), "submission.invalid")
		}
		return failed, err
	}

	if !c.submitting.CompareAndSwap(false, true) {
		return failed, ErrInFlight
	}
	defer c.submitting.Store(false)

	payload := BuildPayload(d)
	key := c.keyFor(payload)
	ctx = c.log.WithFields(ctx, map[string]any{"customer_id": d.CustomerID, "idempotency_key": key})

	order, err := c.orders.CreateOrder(ctx, payload, key)
	if err != nil {
		subErr := &Error{Message: apiclient.DetailOr(err, GenericFailureMessage), Err: err}
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			subErr.StatusCode = apiErr.StatusCode
		}
		c.log.Warn(ctx, "submission.failed", err)
		return failed, subErr
	}

	c.pendingKey, c.pendingFingerprint = "", ""

	outcome := Outcome{
		OrderID: order.ID,
		Total:   order.Total,
		Draft:   draft.New(),
	}
	c.log.Info(c.log.WithField(ctx, "order_id", order.ID), "submission.created")

	if c.refresher != nil {
		if err := c.refresher.Refresh(ctx); err != nil {
			outcome.RefreshErr = err
		}
	}
	return outcome, nil
}

// keyFor returns the key of the last failed attempt when payload is unchanged since,
// otherwise a new key that is kept until the order is created.
func (c *Coordinator) keyFor(payload models.CreateOrderRequest) string {
	fingerprint := fingerprintOf(payload)
	if c.pendingKey != "" && fingerprint != "" && fingerprint == c.pendingFingerprint {
		return c.pendingKey
	}
	c.pendingKey, c.pendingFingerprint = c.newKey(), fingerprint
	return c.pendingKey
}

// fingerprintOf hashes the request body; "" when it cannot be encoded
func fingerprintOf(payload models.CreateOrderRequest) string {
	body, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// BuildPayload shapes a draft into the creation request.
// An empty installer or notes field is omitted rather than sent empty, quantities are
// sent as numbers, and a price override is only included when the user typed a number
// so the backend applies its own catalog price otherwise.
func BuildPayload(d draft.Draft) models.CreateOrderRequest {
	status := d.Status
	if status == "" {
		status = models.DefaultStatus
	}

	items := make([]models.CreateOrderItemRequest, 0, len(d.Items))
	for _, item := range d.Items {
		req := models.CreateOrderItemRequest{
			MaterialID: item.MaterialID,
			Quantity:   utils.NumberOrZero(item.Quantity).InexactFloat64(),
		}
		if price, ok := utils.ParseNumber(item.UnitPrice); ok {
			value := price.InexactFloat64()
			req.UnitPrice = &value
		}
		items = append(items, req)
	}

	return models.CreateOrderRequest{
		CustomerID:  d.CustomerID,
		InstallerID: utils.OptionalString(d.InstallerID),
		Status:      status,
		Notes:       utils.OptionalString(d.Notes),
		Items:       items,
	}
}
