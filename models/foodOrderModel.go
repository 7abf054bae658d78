package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeFood        = "food"
	DefaultDishName = "Food Order"
)

// FoodOrder is a guest food order. Upstream producers disagree on field
// names, so both items/item and totalAmount/totalPrice are decoded; use
// NormalizeFoodOrder instead of reading them directly.
type FoodOrder struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Admin_id       string             `bson:"adminId" json:"adminId"`
	Status         string             `bson:"status,omitempty" json:"status"`
	Room_number    int                `bson:"roomNumber,omitempty" json:"roomNumber"`
	Guest_name     string             `bson:"guestName,omitempty" json:"guestName"`
	Guest_mobile   string             `bson:"guestMobile,omitempty" json:"guestMobile"`
	Items          *string            `bson:"items,omitempty" json:"items,omitempty"`
	Item           *string            `bson:"item,omitempty" json:"item,omitempty"`
	Total_amount   *float64           `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"`
	Total_price    *float64           `bson:"totalPrice,omitempty" json:"totalPrice,omitempty"`
	Category       string             `bson:"category,omitempty" json:"category"`
	Quantity       int                `bson:"quantity,omitempty" json:"quantity"`
	Unit_price     float64            `bson:"unitPrice,omitempty" json:"unitPrice"`
	Estimated_time int                `bson:"estimatedTime,omitempty" json:"estimatedTime,omitempty"`
	Created_at     time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	Accepted_at    *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	Updated_at     *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// OrderProjection is the normalized view of a FoodOrder copied into the
// tracking and guest-facing records.
type OrderProjection struct {
	Food_order_id string
	Room_number   int
	Guest_name    string
	Guest_mobile  string
	Dish_name     string
	Total_amount  float64
	Category      string
	Quantity      int
	Unit_price    float64
}

// NormalizeFoodOrder resolves the field aliases of an order:
// items, then item, then "Food Order" for the dish; totalAmount, then
// totalPrice, then 0 for the amount.
func NormalizeFoodOrder(order FoodOrder) OrderProjection {
	dish := DefaultDishName
	switch {
	case order.Items != nil && *order.Items != "":
		dish = *order.Items
	case order.Item != nil && *order.Item != "":
		dish = *order.Item
	}

	var amount float64
	switch {
	case order.Total_amount != nil:
		amount = *order.Total_amount
	case order.Total_price != nil:
		amount = *order.Total_price
	}

	return OrderProjection{
		Food_order_id: order.ID.Hex(),
		Room_number:   order.Room_number,
		Guest_name:    order.Guest_name,
		Guest_mobile:  order.Guest_mobile,
		Dish_name:     dish,
		Total_amount:  amount,
		Category:      order.Category,
		Quantity:      order.Quantity,
		Unit_price:    order.Unit_price,
	}
}
