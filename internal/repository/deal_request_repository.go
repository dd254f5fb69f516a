package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/carmarket/internal/model"
)

// DealRequestRepo provides persistence for deal requests.
type DealRequestRepo struct {
	db *gorm.DB
}

// NewDealRequestRepo constructs a DealRequestRepo with the provided DB handle.
func NewDealRequestRepo(db *gorm.DB) *DealRequestRepo { return &DealRequestRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *DealRequestRepo) DB() *gorm.DB { return r.db }

// Create inserts a new request in the waiting state.
func (r *DealRequestRepo) Create(ctx context.Context, d *model.DealRequest) error {
	d.ID = 0
	d.Status = model.DealWaiting
	d.DateApproved = nil
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

// ListForOwner returns all requests on cars owned by ownerID with the
// car and seeker attached, newest first.
func (r *DealRequestRepo) ListForOwner(ctx context.Context, ownerID uint64) ([]model.DealRequest, error) {
	var out []model.DealRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN cars ON cars.id = deal_requests.car_id").
		Where("cars.owner_id = ?", ownerID).
		Preload("Car").
		Preload("Seeker").
		Order("deal_requests.id DESC").
		Find(&out).Error
	return out, err
}

// FindDecidableTx loads a request that the owner may still decide on:
// it must exist, be waiting, and belong to a car owned by ownerID.  Any
// other case is ErrDealRequestNotFound.  The row is locked for update
// where the dialect supports it, and the car is attached.
func (r *DealRequestRepo) FindDecidableTx(ctx context.Context, tx *gorm.DB, id, ownerID uint64) (*model.DealRequest, error) {
	q := tx.WithContext(ctx).
		Joins("JOIN cars ON cars.id = deal_requests.car_id").
		Where("deal_requests.id = ? AND cars.owner_id = ? AND deal_requests.status = ?", id, ownerID, model.DealWaiting)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var d model.DealRequest
	if err := q.First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealRequestNotFound
		}
		return nil, err
	}
	var car model.Car
	if err := tx.WithContext(ctx).First(&car, "id = ?", d.CarID).Error; err != nil {
		return nil, err
	}
	d.Car = &car
	return &d, nil
}

// SetStatusTx moves a waiting request to status inside tx.  The update is
// guarded on the waiting status so a concurrent decision cannot be
// overwritten.
func (r *DealRequestRepo) SetStatusTx(ctx context.Context, tx *gorm.DB, id uint64, status model.DealStatus) error {
	next, err := model.DealWaiting.Transition(status)
	if err != nil {
		return err
	}
	res := tx.WithContext(ctx).Model(&model.DealRequest{}).
		Where("id = ? AND status = ?", id, model.DealWaiting).
		Update("status", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDealRequestNotFound
	}
	return nil
}

// GetByID fetches a request with its car and seeker attached.
func (r *DealRequestRepo) GetByID(ctx context.Context, id uint64) (*model.DealRequest, error) {
	var d model.DealRequest
	if err := r.db.WithContext(ctx).Preload("Car").Preload("Seeker").First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealRequestNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Count returns the number of deal requests.
func (r *DealRequestRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.DealRequest{}).Count(&n).Error
	return n, err
}

// CountByStatus returns the number of deal requests in status.
func (r *DealRequestRepo) CountByStatus(ctx context.Context, status model.DealStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.DealRequest{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
