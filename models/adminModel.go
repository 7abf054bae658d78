package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a hotel operator account; Admin_id scopes every tenant query.
type Admin struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Admin_id   string             `bson:"adminId" json:"adminId"`
	Name       *string            `bson:"name" json:"name"`
	Email      *string            `bson:"email" json:"email" validate:"email,required"`
	Password   *string            `bson:"password" json:"password,omitempty" validate:"required,min=6"`
	Created_at time.Time          `bson:"createdAt" json:"createdAt"`
	Updated_at time.Time          `bson:"updatedAt" json:"updatedAt"`
}
