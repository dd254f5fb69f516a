// Package queue defines the deal event payload exchanged over the broker and
// the consumer that records it.
package queue

import (
    "time"

    "github.com/iliyamo/carmarket/internal/model"
)

// DealEventsQueue is both the RabbitMQ queue name and the NATS subject.
const DealEventsQueue = "deal.events"

// Event types.
const (
    EventDealSubmitted = "deal_request.submitted"
    EventDealApproved  = "deal_request.approved"
    EventDealRejected  = "deal_request.rejected"
)

// DealEvent carries enough about a deal request for consumers to log it and
// notify the seeker without reading the primary database.
type DealEvent struct {
    Type          string `json:"type"`
    DealRequestID uint64 `json:"deal_request_id"`
    CarID         uint64 `json:"car_id"`
    CarTitle      string `json:"car_title"`
    OwnerID       uint64 `json:"owner_id"`
    SeekerID      uint64 `json:"seeker_id"`
    SeekerEmail   string `json:"seeker_email"`
    Status        string `json:"status"`
    OccurredAt    string `json:"occurred_at"`
}

// NewDealEvent builds an event from a request with Car and Seeker loaded.
// Missing associations leave the related fields empty.
func NewDealEvent(typ string, d *model.DealRequest, at time.Time) DealEvent {
    ev := DealEvent{
        Type:          typ,
        DealRequestID: d.ID,
        CarID:         d.CarID,
        SeekerID:      d.SeekerID,
        Status:        string(d.Status),
        OccurredAt:    at.UTC().Format(time.RFC3339),
    }
    if d.Car != nil {
        ev.CarTitle = d.Car.Title
        ev.OwnerID = d.Car.OwnerID
    }
    if d.Seeker != nil {
        ev.SeekerEmail = d.Seeker.Email
    }
    return ev
}

// EventTypeFor maps a terminal status to its decision event type.
func EventTypeFor(s model.DealStatus) string {
    switch s {
    case model.DealApproved:
        return EventDealApproved
    case model.DealRejected:
        return EventDealRejected
    default:
        return EventDealSubmitted
    }
}
