package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoomOccupied  = "occupied"
	RoomAvailable = "available"
)

type Room struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Admin_id    string             `bson:"adminId" json:"adminId"`
	Room_number int                `bson:"roomNumber" json:"roomNumber" validate:"required"`
	Status      string             `bson:"status" json:"status" validate:"required,eq=occupied|eq=available"`
}
