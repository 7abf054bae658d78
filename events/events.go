// Package events publishes accepted food orders to a Redis stream for
// downstream consumers (kitchen displays, billing).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// OrderAccepted is published once a food order and both derived records
// have been written.
type OrderAccepted struct {
	AdminID       string    `json:"adminId"`
	FoodOrderID   string    `json:"foodOrderId"`
	TrackingID    string    `json:"trackingId"`
	GuestOrderID  string    `json:"guestOrderId"`
	RoomNumber    int       `json:"roomNumber"`
	DishName      string    `json:"dishName"`
	TotalAmount   float64   `json:"totalAmount"`
	EstimatedTime int       `json:"estimatedTime"`
	ReadyAt       time.Time `json:"readyAt"`
	AcceptedAt    time.Time `json:"acceptedAt"`
}

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// PublishOrderAccepted appends the event to the stream as a JSON `data`
// field with a unix `timestamp`, and returns the entry id.
func (p *Publisher) PublishOrderAccepted(ctx context.Context, e OrderAccepted) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      "order.accepted",
			"data":      string(data),
			"timestamp": e.AcceptedAt.Unix(),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to %s: %w", p.stream, err)
	}
	return id, nil
}
