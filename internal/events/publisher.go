package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tourbooking/internal/domain"
)

const RoutingBookingCreated = "booking.created"

type BookingCreated struct {
	Event      string             `json:"event"`
	Version    int                `json:"version"`
	OccurredAt string             `json:"occurred_at"`
	Data       BookingCreatedData `json:"data"`
}

type BookingCreatedData struct {
	BookingID int64   `json:"booking_id"`
	TourID    string  `json:"tour_id"`
	UserID    int64   `json:"user_id"`
	Price     float64 `json:"price"`
	SessionID string  `json:"session_id,omitempty"`
}

func NewBookingCreated(b *domain.Booking, now time.Time) BookingCreated {
	return BookingCreated{
		Event:      RoutingBookingCreated,
		Version:    1,
		OccurredAt: now.UTC().Format(time.RFC3339),
		Data: BookingCreatedData{
			BookingID: b.ID,
			TourID:    b.TourID,
			UserID:    b.UserID,
			Price:     b.Price,
			SessionID: b.SessionID,
		},
	}
}

// Publisher sends booking events to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) BookingCreated(ctx context.Context, b *domain.Booking) error {
	return p.PublishJSON(ctx, RoutingBookingCreated, NewBookingCreated(b, time.Now()))
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *domain.Booking) error { return nil }

func (NopPublisher) Close() error { return nil }
