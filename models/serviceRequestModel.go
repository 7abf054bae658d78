package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
)

type ServiceRequest struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Admin_id     string             `bson:"adminId" json:"adminId"`
	Status       string             `bson:"status,omitempty" json:"status"`
	Room_number  int                `bson:"roomNumber,omitempty" json:"roomNumber"`
	Guest_name   string             `bson:"guestName,omitempty" json:"guestName"`
	Guest_mobile string             `bson:"guestMobile,omitempty" json:"guestMobile"`
	Type         string             `bson:"type,omitempty" json:"type"`
	Created_at   time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
	Accepted_at  *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	Updated_at   *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IsPending reports whether the request belongs in the pending view.
// Producers that omit status mean pending.
func (r ServiceRequest) IsPending() bool {
	return r.Status == "" || r.Status == StatusPending
}
