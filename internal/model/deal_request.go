package model

import (
    "fmt"
    "time"
)

// DealStatus is the state of a deal request.  WAITING is the initial
// state; APPROVED and REJECTED are terminal.
type DealStatus string

const (
    DealWaiting  DealStatus = "waiting"
    DealApproved DealStatus = "approved"
    DealRejected DealStatus = "rejected"
)

// Terminal reports whether no further transition is possible from s.
func (s DealStatus) Terminal() bool {
    return s == DealApproved || s == DealRejected
}

// Transition returns the status reached by moving from s to next.  The
// only legal moves are waiting -> approved and waiting -> rejected.
func (s DealStatus) Transition(next DealStatus) (DealStatus, error) {
    if s != DealWaiting || !next.Terminal() {
        return s, fmt.Errorf("illegal deal status transition %s -> %s", s, next)
    }
    return next, nil
}

// DealRequest is a seeker's request to rent or buy a car.  It maps to
// the `deal_requests` table.
//
// Fields:
//  ID           – primary key identifier.
//  CarID        – car the request is about (cascade on delete).
//  SeekerID     – user who submitted the request.
//  Comment      – message from the seeker to the owner.
//  DateApproved – approval timestamp (nullable; see workflow note).
//  Status       – waiting, approved or rejected.
type DealRequest struct {
    ID           uint64     `gorm:"primaryKey"`
    CarID        uint64     `gorm:"not null;index"`
    Car          *Car       `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE"`
    SeekerID     uint64     `gorm:"not null;index"`
    Seeker       *User      `gorm:"foreignKey:SeekerID;constraint:OnDelete:CASCADE"`
    Comment      string     `gorm:"type:text;not null"`
    DateApproved *time.Time
    Status       DealStatus `gorm:"size:10;not null;default:waiting;index"`
}
