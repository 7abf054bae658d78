package workflow

import (
	"context"
	"fmt"
	"time"

	"go-hotel-dashboard/database"
	"go-hotel-dashboard/events"
	"go-hotel-dashboard/models"

	"go.uber.org/zap"
)

// Step numbers the stages of a food order accept.
type Step int

const (
	StepSnapshot Step = iota + 1
	StepUpdateOrder
	StepCreateTracking
	StepCreateGuestOrder
)

func (s Step) String() string {
	switch s {
	case StepSnapshot:
		return "snapshot order"
	case StepUpdateOrder:
		return "update order"
	case StepCreateTracking:
		return "create tracking record"
	case StepCreateGuestOrder:
		return "create guest order"
	}
	return fmt.Sprintf("step %d", int(s))
}

// StepError reports the step a food order accept stopped at. Earlier steps
// are not rolled back: once StepUpdateOrder has succeeded the order is in
// progress even if a derived record is missing. Repeating the accept retries
// the projection from the order captured the first time; derived records are
// keyed by the order id, so the retry never duplicates them.
type StepError struct {
	Step       Step
	OrderID    string
	TrackingID string
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("accept food order %s: %s: %v", e.OrderID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Select picks a record for the estimated-time prompt and resets the
// estimate to the default. The selection belongs to the signed-in operator.
func (w *Workflow) Select(id, recordType, name string, roomNumber int) Selection {
	identity := w.identity.Current()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection = &Selection{
		ID:                id,
		Type:              recordType,
		Name:              name,
		Room_number:       roomNumber,
		Estimated_minutes: DefaultEstimatedMinutes,
		identity:          identity,
	}
	return *w.selection
}

// OpenTimeModal selects a food order for acceptance.
func (w *Workflow) OpenTimeModal(id, name string, roomNumber int) Selection {
	return w.Select(id, models.TypeFood, name, roomNumber)
}

func (w *Workflow) SetEstimatedTime(minutes int) (Selection, error) {
	if !ValidEstimate(minutes) {
		return Selection{}, ErrInvalidEstimate
	}
	identity := w.identity.Current()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection == nil || w.selection.identity != identity {
		return Selection{}, ErrNoSelection
	}
	w.selection.Estimated_minutes = minutes
	return *w.selection, nil
}

func (w *Workflow) CloseTimeModal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection = nil
}

// CurrentSelection returns the signed-in operator's selected record, if any.
func (w *Workflow) CurrentSelection() (Selection, bool) {
	identity := w.identity.Current()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection == nil || w.selection.identity != identity {
		return Selection{}, false
	}
	return *w.selection, true
}

// AcceptFoodOrderWithTime accepts the selected food order with the selected
// estimate and clears the selection on success.
func (w *Workflow) AcceptFoodOrderWithTime(ctx context.Context) (Confirmation, error) {
	sel, ok := w.CurrentSelection()
	if !ok {
		return Confirmation{}, ErrNoSelection
	}
	if sel.Type != models.TypeFood {
		return Confirmation{}, ErrNotFood
	}

	conf, err := w.AcceptFoodOrder(ctx, sel.ID, sel.Estimated_minutes)
	if err != nil {
		return Confirmation{}, err
	}

	w.mu.Lock()
	if w.selection != nil && *w.selection == sel {
		w.selection = nil
	}
	w.mu.Unlock()
	return conf, nil
}

// AcceptFoodOrder moves a pending food order to in-progress and projects it
// into a tracking record and a guest-facing order. The steps run strictly in
// order, each waiting for the previous one:
//
//  1. capture the order from the live view, before the update can drop it
//     from the pending list
//  2. update the order's status, estimate and timestamps
//  3. create the tracking record (only if step 1 found the order)
//  4. create the guest order referencing the order and the tracking record
func (w *Workflow) AcceptFoodOrder(ctx context.Context, id string, estimatedMinutes int) (Confirmation, error) {
	identity := w.identity.Current()
	if identity == "" {
		return Confirmation{}, ErrUnbound
	}
	if !ValidEstimate(estimatedMinutes) {
		return Confirmation{}, ErrInvalidEstimate
	}

	order, found := w.orders.FoodOrder(id)
	if found && order.Admin_id != "" && order.Admin_id != identity {
		found = false
	}
	if !found {
		order, found = w.recall(identity, id)
	}

	err := w.store.Update(ctx, w.collections.FoodOrders, id, database.Eq(scopeField, identity), database.Fields{
		"status":        models.StatusInProgress,
		"estimatedTime": estimatedMinutes,
		"acceptedAt":    database.ServerTimestamp,
		"updatedAt":     database.ServerTimestamp,
	})
	if err != nil {
		return Confirmation{}, w.fail(&StepError{Step: StepUpdateOrder, OrderID: id, Err: err})
	}

	conf := Confirmation{
		Message:        fmt.Sprintf("Order accepted, ready in %d minutes", estimatedMinutes),
		ID:             id,
		Estimated_time: estimatedMinutes,
	}
	if !found {
		w.logger.Warn("Accepted order was not in the live view; derived records skipped",
			zap.String("id", id),
		)
		return conf, nil
	}

	p := models.NormalizeFoodOrder(order)
	acceptedAt := w.now()
	readyAt := acceptedAt.Add(time.Duration(estimatedMinutes) * time.Minute)
	fields := projectionFields(identity, p, estimatedMinutes, readyAt)

	trackingID, err := w.store.Create(ctx, w.collections.OrderTracking, id, fields)
	if err != nil {
		w.remember(identity, id, order)
		return Confirmation{}, w.fail(&StepError{Step: StepCreateTracking, OrderID: id, Err: err})
	}

	guest := database.Fields{"trackingId": trackingID}
	for k, v := range fields {
		guest[k] = v
	}
	guestID, err := w.store.Create(ctx, w.collections.GuestOrders, id, guest)
	if err != nil {
		w.remember(identity, id, order)
		return Confirmation{}, w.fail(&StepError{Step: StepCreateGuestOrder, OrderID: id, TrackingID: trackingID, Err: err})
	}
	w.forget(identity, id)

	conf.Room_number = p.Room_number
	conf.Tracking_id = trackingID
	conf.Guest_order_id = guestID
	conf.Ready_at = &readyAt
	if p.Room_number > 0 {
		conf.Message = fmt.Sprintf("Order for room %d accepted, ready in %d minutes", p.Room_number, estimatedMinutes)
	}

	w.logger.Info("Food order accepted",
		zap.String("id", id),
		zap.String("tracking_id", trackingID),
		zap.String("guest_order_id", guestID),
		zap.Int("estimated_minutes", estimatedMinutes),
	)
	w.publish(ctx, events.OrderAccepted{
		AdminID:       identity,
		FoodOrderID:   id,
		TrackingID:    trackingID,
		GuestOrderID:  guestID,
		RoomNumber:    p.Room_number,
		DishName:      p.Dish_name,
		TotalAmount:   p.Total_amount,
		EstimatedTime: estimatedMinutes,
		ReadyAt:       readyAt,
		AcceptedAt:    acceptedAt,
	})
	return conf, nil
}

func projectionFields(identity string, p models.OrderProjection, estimatedMinutes int, readyAt time.Time) database.Fields {
	return database.Fields{
		"foodOrderId":   p.Food_order_id,
		"adminId":       identity,
		"roomNumber":    p.Room_number,
		"guestName":     p.Guest_name,
		"guestMobile":   p.Guest_mobile,
		"dishName":      p.Dish_name,
		"totalAmount":   p.Total_amount,
		"category":      p.Category,
		"quantity":      p.Quantity,
		"unitPrice":     p.Unit_price,
		"estimatedTime": estimatedMinutes,
		"readyAt":       readyAt,
		"status":        models.StatusInProgress,
		"createdAt":     database.ServerTimestamp,
	}
}

// remember keeps an order whose projection failed so a retry by the same
// operator can finish it after the order has left the pending view.
func (w *Workflow) remember(identity, id string, order models.FoodOrder) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unprojected[orderKey{identity: identity, id: id}] = order
}

func (w *Workflow) recall(identity, id string) (models.FoodOrder, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, ok := w.unprojected[orderKey{identity: identity, id: id}]
	return order, ok
}

func (w *Workflow) forget(identity, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.unprojected, orderKey{identity: identity, id: id})
}

func (w *Workflow) fail(err *StepError) error {
	w.logger.Error("Food order accept stopped",
		zap.String("id", err.OrderID),
		zap.Stringer("step", err.Step),
		zap.Error(err.Err),
	)
	return err
}

func (w *Workflow) publish(ctx context.Context, e events.OrderAccepted) {
	if w.publisher == nil {
		return
	}
	if _, err := w.publisher.PublishOrderAccepted(ctx, e); err != nil {
		w.logger.Warn("Failed to publish accepted order",
			zap.String("id", e.FoodOrderID),
			zap.Error(err),
		)
	}
}
