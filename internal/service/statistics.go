package service

import (
	"context"

	"github.com/iliyamo/carmarket/internal/model"
	"github.com/iliyamo/carmarket/internal/repository"
)

// Stats is a point-in-time summary of the marketplace.
type Stats struct {
	TotalCars     int64
	AvailableCars int64
	SoldCars      int64

	TotalRequests    int64
	WaitingRequests  int64
	ApprovedRequests int64
	RejectedRequests int64
}

// Statistics computes Stats straight from the database on every call.
type Statistics struct {
	cars  *repository.CarRepo
	deals *repository.DealRequestRepo
}

func NewStatistics(cars *repository.CarRepo, deals *repository.DealRequestRepo) *Statistics {
	if cars == nil || deals == nil {
		panic("nil repository passed to NewStatistics")
	}
	return &Statistics{cars: cars, deals: deals}
}

// Collect runs one count query per figure.
func (s *Statistics) Collect(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.TotalCars, err = s.cars.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.AvailableCars, err = s.cars.CountByAvailability(ctx, true); err != nil {
		return Stats{}, err
	}
	if st.SoldCars, err = s.cars.CountByAvailability(ctx, false); err != nil {
		return Stats{}, err
	}
	if st.TotalRequests, err = s.deals.Count(ctx); err != nil {
		return Stats{}, err
	}
	for _, c := range []struct {
		status model.DealStatus
		dst    *int64
	}{
		{model.DealWaiting, &st.WaitingRequests},
		{model.DealApproved, &st.ApprovedRequests},
		{model.DealRejected, &st.RejectedRequests},
	} {
		if *c.dst, err = s.deals.CountByStatus(ctx, c.status); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
