package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/carmarket/internal/model"
)

// carEditableColumns lists the columns an owner may change through the
// edit form.  Owner, availability and creation time are not among them.
var carEditableColumns = []string{
	"title", "description", "price", "brand", "engine_capacity",
	"color", "year_manufacture", "body_type", "image", "type",
}

// CarRepo provides persistence for cars.
type CarRepo struct {
	db *gorm.DB
}

// NewCarRepo constructs a CarRepo with the provided DB handle.
func NewCarRepo(db *gorm.DB) *CarRepo { return &CarRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *CarRepo) DB() *gorm.DB { return r.db }

// ListAvailable returns every car still available, newest first.
func (r *CarRepo) ListAvailable(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&cars).Error
	return cars, err
}

// GetByID fetches a car regardless of owner or availability.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	var c model.Car
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByIDAndOwner fetches a car only if it belongs to ownerID.  A car
// owned by someone else yields ErrCarNotFound.
func (r *CarRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Car, error) {
	var c model.Car
	if err := r.db.WithContext(ctx).First(&c, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new car.  New cars are always available, whatever
// the caller set.  On success ID and CreatedAt are populated.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
	c.ID = 0
	c.Available = true
	return r.db.WithContext(ctx).Create(c).Error
}

// Update writes the editable columns of c for the car identified by
// c.ID and c.OwnerID.  Callers check ownership beforehand; MySQL reports
// zero affected rows for an unchanged row, so RowsAffected is not used.
func (r *CarRepo) Update(ctx context.Context, c *model.Car) error {
	return r.db.WithContext(ctx).
		Model(&model.Car{}).
		Where("id = ? AND owner_id = ?", c.ID, c.OwnerID).
		Select(carEditableColumns).
		Updates(c).Error
}

// Delete removes the car and its deal requests in one transaction.  The
// requests are deleted explicitly so the cascade does not depend on the
// database enforcing foreign keys.
func (r *CarRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Car
		if err := tx.Select("id").First(&c, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCarNotFound
			}
			return err
		}
		if err := tx.Where("car_id = ?", id).Delete(&model.DealRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Car{}, id).Error
	})
}

// MarkUnavailableTx flips a car's availability to false inside tx.  A car
// that is already unavailable is left as is.
func (r *CarRepo) MarkUnavailableTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	return tx.WithContext(ctx).Model(&model.Car{}).Where("id = ?", id).Update("available", false).Error
}

// Count returns the number of cars.
func (r *CarRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Car{}).Count(&n).Error
	return n, err
}

// CountByAvailability returns the number of cars whose available flag
// equals available.
func (r *CarRepo) CountByAvailability(ctx context.Context, available bool) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Car{}).Where("available = ?", available).Count(&n).Error
	return n, err
}
