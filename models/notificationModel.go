package models

import "time"

const (
	AlertArrival = "arrival"
	AlertError   = "error"
)

type Notification struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Created_at time.Time `json:"createdAt"`
}
