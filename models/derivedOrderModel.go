package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderTracking is created once when a food order is accepted and is not
// written again by the dashboard.
type OrderTracking struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Food_order_id   string             `bson:"foodOrderId" json:"foodOrderId"`
	Admin_id        string             `bson:"adminId" json:"adminId"`
	Room_number     int                `bson:"roomNumber" json:"roomNumber"`
	Guest_name      string             `bson:"guestName" json:"guestName"`
	Guest_mobile    string             `bson:"guestMobile" json:"guestMobile"`
	Dish_name       string             `bson:"dishName" json:"dishName"`
	Total_amount    float64            `bson:"totalAmount" json:"totalAmount"`
	Category        string             `bson:"category" json:"category"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Estimated_time  int                `bson:"estimatedTime" json:"estimatedTime"`
	Ready_at        time.Time          `bson:"readyAt" json:"readyAt"`
	Status          string             `bson:"status" json:"status"`
	Idempotency_key string             `bson:"idempotencyKey,omitempty" json:"-"`
	Created_at      time.Time          `bson:"createdAt" json:"createdAt"`
}

// GuestOrder mirrors OrderTracking for the guest-facing app and references
// both the food order and its tracking record.
type GuestOrder struct {
	OrderTracking `bson:",inline"`
	Tracking_id   string `bson:"trackingId" json:"trackingId"`
}
