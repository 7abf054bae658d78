package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNormalizeFoodOrder_PrimaryFields(t *testing.T) {
	order := FoodOrder{
		ID:           primitive.NewObjectID(),
		Room_number:  12,
		Items:        strPtr("Club Sandwich"),
		Item:         strPtr("ignored"),
		Total_amount: floatPtr(450),
		Total_price:  floatPtr(1),
		Quantity:     2,
	}

	p := NormalizeFoodOrder(order)

	assert.Equal(t, order.ID.Hex(), p.Food_order_id)
	assert.Equal(t, 12, p.Room_number)
	assert.Equal(t, "Club Sandwich", p.Dish_name)
	assert.Equal(t, 450.0, p.Total_amount)
	assert.Equal(t, 2, p.Quantity)
}

func TestNormalizeFoodOrder_Aliases(t *testing.T) {
	p := NormalizeFoodOrder(FoodOrder{Item: strPtr("Masala Dosa"), Total_price: floatPtr(180)})

	assert.Equal(t, "Masala Dosa", p.Dish_name)
	assert.Equal(t, 180.0, p.Total_amount)
}

func TestNormalizeFoodOrder_Defaults(t *testing.T) {
	p := NormalizeFoodOrder(FoodOrder{Items: strPtr("")})

	assert.Equal(t, DefaultDishName, p.Dish_name)
	assert.Zero(t, p.Total_amount)
}

func TestServiceRequest_IsPending(t *testing.T) {
	assert.True(t, ServiceRequest{}.IsPending())
	assert.True(t, ServiceRequest{Status: StatusPending}.IsPending())
	assert.False(t, ServiceRequest{Status: StatusInProgress}.IsPending())
}
