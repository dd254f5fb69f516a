package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/carmarket/internal/database/dbtest"
	"github.com/iliyamo/carmarket/internal/model"
	"github.com/iliyamo/carmarket/internal/repository"
)

func TestDealRequestRepo_CreateStartsWaiting(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.User(t, db, "o@example.com", model.RoleOwner)
	seeker := dbtest.User(t, db, "s@example.com", model.RoleSeeker)
	car := dbtest.Car(t, db, owner.ID, "Civic")
	repo := repository.NewDealRequestRepo(db)
	ctx := context.Background()

	now := time.Now()
	d := &model.DealRequest{CarID: car.ID, SeekerID: seeker.ID, Comment: "cash", Status: model.DealApproved, DateApproved: &now}
	require.NoError(t, repo.Create(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DealWaiting, got.Status)
	assert.Nil(t, got.DateApproved)
	require.NotNil(t, got.Car)
	require.NotNil(t, got.Seeker)
	assert.Equal(t, "Civic", got.Car.Title)
	assert.Equal(t, "s@example.com", got.Seeker.Email)
}

func TestDealRequestRepo_ListForOwner(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.User(t, db, "o@example.com", model.RoleOwner)
	other := dbtest.User(t, db, "x@example.com", model.RoleOwner)
	seeker := dbtest.User(t, db, "s@example.com", model.RoleSeeker)
	mine := dbtest.Car(t, db, owner.ID, "mine")
	theirs := dbtest.Car(t, db, other.ID, "theirs")
	first := dbtest.DealRequest(t, db, mine.ID, seeker.ID)
	second := dbtest.DealRequest(t, db, mine.ID, seeker.ID)
	dbtest.DealRequest(t, db, theirs.ID, seeker.ID)
	repo := repository.NewDealRequestRepo(db)

	got, err := repo.ListForOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	for _, d := range got {
		require.NotNil(t, d.Car)
		require.NotNil(t, d.Seeker)
		assert.Equal(t, owner.ID, d.Car.OwnerID)
		assert.Equal(t, seeker.ID, d.Seeker.ID)
	}
}

func TestDealRequestRepo_FindDecidableTx(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.User(t, db, "o@example.com", model.RoleOwner)
	other := dbtest.User(t, db, "x@example.com", model.RoleOwner)
	seeker := dbtest.User(t, db, "s@example.com", model.RoleSeeker)
	car := dbtest.Car(t, db, owner.ID, "Civic")
	waiting := dbtest.DealRequest(t, db, car.ID, seeker.ID)
	decided := dbtest.DealRequest(t, db, car.ID, seeker.ID)
	require.NoError(t, db.Model(&model.DealRequest{}).Where("id = ?", decided.ID).Update("status", model.DealRejected).Error)
	repo := repository.NewDealRequestRepo(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		d, err := repo.FindDecidableTx(ctx, tx, waiting.ID, owner.ID)
		require.NoError(t, err)
		require.NotNil(t, d.Car)
		assert.Equal(t, car.ID, d.Car.ID)

		_, err = repo.FindDecidableTx(ctx, tx, waiting.ID, other.ID)
		assert.ErrorIs(t, err, repository.ErrDealRequestNotFound)

		_, err = repo.FindDecidableTx(ctx, tx, decided.ID, owner.ID)
		assert.ErrorIs(t, err, repository.ErrDealRequestNotFound)

		_, err = repo.FindDecidableTx(ctx, tx, waiting.ID+100, owner.ID)
		assert.ErrorIs(t, err, repository.ErrDealRequestNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestDealRequestRepo_SetStatusTx(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.User(t, db, "o@example.com", model.RoleOwner)
	seeker := dbtest.User(t, db, "s@example.com", model.RoleSeeker)
	car := dbtest.Car(t, db, owner.ID, "Civic")
	d := dbtest.DealRequest(t, db, car.ID, seeker.ID)
	repo := repository.NewDealRequestRepo(db)
	ctx := context.Background()

	assert.Error(t, repo.SetStatusTx(ctx, db, d.ID, model.DealWaiting))
	require.NoError(t, repo.SetStatusTx(ctx, db, d.ID, model.DealApproved))
	assert.ErrorIs(t, repo.SetStatusTx(ctx, db, d.ID, model.DealRejected), repository.ErrDealRequestNotFound)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DealApproved, got.Status)
}

func TestDealRequestRepo_Counts(t *testing.T) {
	db := dbtest.New(t)
	owner := dbtest.User(t, db, "o@example.com", model.RoleOwner)
	seeker := dbtest.User(t, db, "s@example.com", model.RoleSeeker)
	car := dbtest.Car(t, db, owner.ID, "Civic")
	a := dbtest.DealRequest(t, db, car.ID, seeker.ID)
	b := dbtest.DealRequest(t, db, car.ID, seeker.ID)
	dbtest.DealRequest(t, db, car.ID, seeker.ID)
	repo := repository.NewDealRequestRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.SetStatusTx(ctx, db, a.ID, model.DealApproved))
	require.NoError(t, repo.SetStatusTx(ctx, db, b.ID, model.DealRejected))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for status, want := range map[model.DealStatus]int64{
		model.DealWaiting:  1,
		model.DealApproved: 1,
		model.DealRejected: 1,
	} {
		n, err := repo.CountByStatus(ctx, status)
		require.NoError(t, err)
		assert.Equal(t, want, n, status)
	}
}
