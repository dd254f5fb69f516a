// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/database"
	"github.com/iliyamo/carmarket/internal/model"
)

// New returns a migrated sqlite database living in the test's temp dir.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Config{
		DBDriver: "sqlite",
		DBName:   filepath.Join(t.TempDir(), "carmarket.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// User inserts a user with the given email and role.
func User(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Car inserts an available car for sale owned by ownerID.
func Car(t *testing.T, db *gorm.DB, ownerID uint64, title string) *model.Car {
	t.Helper()
	c := &model.Car{
		OwnerID:         ownerID,
		Title:           title,
		Price:           12500,
		Brand:           "Toyota",
		EngineCapacity:  1.8,
		Color:           "white",
		YearManufacture: 2018,
		BodyType:        "sedan",
		Available:       true,
		Type:            model.ListingSale,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// DealRequest inserts a waiting deal request by seekerID on carID.
func DealRequest(t *testing.T, db *gorm.DB, carID, seekerID uint64) *model.DealRequest {
	t.Helper()
	d := &model.DealRequest{CarID: carID, SeekerID: seekerID, Comment: "interested", Status: model.DealWaiting}
	require.NoError(t, db.Create(d).Error)
	return d
}
