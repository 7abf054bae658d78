// Package workflow implements the operator's accept actions on service
// requests and food orders.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/events"
	"go-hotel-dashboard/models"

	"go.uber.org/zap"
)

// TimeOptions are the estimated preparation times, in minutes, the operator
// can choose from.
var TimeOptions = []int{5, 10, 15, 20, 30, 45, 60}

const DefaultEstimatedMinutes = 15

var (
	ErrNoSelection     = errors.New("no order selected")
	ErrNotFood         = errors.New("selected record is not a food order")
	ErrUnbound         = errors.New("no operator signed in")
	ErrInvalidEstimate = errors.New("estimated time is not an offered option")
)

func ValidEstimate(minutes int) bool {
	for _, m := range TimeOptions {
		if m == minutes {
			return true
		}
	}
	return false
}

const scopeField = "adminId"

// Writer is the remote store's write side. Updates only match documents
// within scope.
type Writer interface {
	Update(ctx context.Context, collection string, id string, scope database.Predicate, changes database.Fields) error
	Create(ctx context.Context, collection string, key string, fields database.Fields) (string, error)
}

// OrderSource gives the last observed state of a pending food order.
type OrderSource interface {
	FoodOrder(id string) (models.FoodOrder, bool)
}

type IdentitySource interface {
	Current() string
}

type Publisher interface {
	PublishOrderAccepted(ctx context.Context, e events.OrderAccepted) (string, error)
}

type Collections struct {
	ServiceRequests string
	FoodOrders      string
	OrderTracking   string
	GuestOrders     string
}

// Confirmation is what the operator is told after a successful accept.
type Confirmation struct {
	Message        string     `json:"message"`
	ID             string     `json:"id"`
	Room_number    int        `json:"roomNumber,omitempty"`
	Estimated_time int        `json:"estimatedTime,omitempty"`
	Tracking_id    string     `json:"trackingId,omitempty"`
	Guest_order_id string     `json:"guestOrderId,omitempty"`
	Ready_at       *time.Time `json:"readyAt,omitempty"`
}

// Selection is the record picked for the estimated-time prompt.
type Selection struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Name              string `json:"name,omitempty"`
	Room_number       int    `json:"roomNumber,omitempty"`
	Estimated_minutes int    `json:"estimatedMinutes"`

	identity string
}

// orderKey scopes a remembered order to the operator who accepted it.
type orderKey struct {
	identity string
	id       string
}

type Workflow struct {
	store       Writer
	orders      OrderSource
	identity    IdentitySource
	publisher   Publisher
	collections Collections
	logger      *zap.Logger
	now         func() time.Time

	mu          sync.Mutex
	selection   *Selection
	unprojected map[orderKey]models.FoodOrder
}

// New builds the workflow. publisher may be nil.
func New(store Writer, orders OrderSource, identity IdentitySource, publisher Publisher, collections Collections, logger *zap.Logger) *Workflow {
	return &Workflow{
		store:       store,
		orders:      orders,
		identity:    identity,
		publisher:   publisher,
		collections: collections,
		logger:      logger,
		now:         time.Now,
		unprojected: make(map[orderKey]models.FoodOrder),
	}
}

// AcceptServiceRequest marks a service request in progress. It performs a
// single update; a failure leaves the request as it was and is returned
// unchanged for the operator to see.
func (w *Workflow) AcceptServiceRequest(ctx context.Context, id string, requestType string, roomNumber int) (Confirmation, error) {
	identity := w.identity.Current()
	if identity == "" {
		return Confirmation{}, ErrUnbound
	}
	err := w.store.Update(ctx, w.collections.ServiceRequests, id, database.Eq(scopeField, identity), database.Fields{
		"status":     models.StatusInProgress,
		"acceptedAt": database.ServerTimestamp,
		"updatedAt":  database.ServerTimestamp,
	})
	if err != nil {
		w.logger.Error("Failed to accept service request",
			zap.String("id", id),
			zap.Error(err),
		)
		return Confirmation{}, err
	}

	label := "Request"
	if requestType != "" {
		label = requestType + " request"
	}
	msg := label + " accepted"
	if roomNumber > 0 {
		msg = fmt.Sprintf("%s for room %d accepted", label, roomNumber)
	}
	w.logger.Info("Service request accepted",
		zap.String("id", id),
		zap.String("type", requestType),
		zap.Int("room_number", roomNumber),
	)
	return Confirmation{Message: msg, ID: id, Room_number: roomNumber}, nil
}

// IdentityChanged drops the selection and every remembered order that does
// not belong to identity. It is registered as a session listener.
func (w *Workflow) IdentityChanged(identity string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection != nil && w.selection.identity != identity {
		w.selection = nil
	}
	for key := range w.unprojected {
		if key.identity != identity {
			delete(w.unprojected, key)
		}
	}
}
