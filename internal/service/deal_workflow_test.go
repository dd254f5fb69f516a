package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iliyamo/carmarket/internal/database/dbtest"
	"github.com/iliyamo/carmarket/internal/model"
	"github.com/iliyamo/carmarket/internal/platform/metrics"
	"github.com/iliyamo/carmarket/internal/queue"
	"github.com/iliyamo/carmarket/internal/repository"
	"github.com/iliyamo/carmarket/internal/service"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.DealEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.DealEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	db     *gorm.DB
	wf     *service.DealWorkflow
	pub    *recordingPublisher
	m      *metrics.Metrics
	owner  *model.User
	other  *model.User
	seeker *model.User
	car    *model.Car
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{db: db, pub: &recordingPublisher{}, m: metrics.New()}
	f.owner = dbtest.User(t, db, "owner@example.com", model.RoleOwner)
	f.other = dbtest.User(t, db, "other@example.com", model.RoleOwner)
	f.seeker = dbtest.User(t, db, "seeker@example.com", model.RoleSeeker)
	f.car = dbtest.Car(t, db, f.owner.ID, "Golf")
	f.wf = service.NewDealWorkflow(repository.NewCarRepo(db), repository.NewDealRequestRepo(db), f.pub, f.m, zap.NewNop())
	return f
}

func (f *fixture) status(t *testing.T, id uint64) model.DealStatus {
	t.Helper()
	var d model.DealRequest
	require.NoError(t, f.db.First(&d, id).Error)
	return d.Status
}

func (f *fixture) available(t *testing.T, id uint64) bool {
	t.Helper()
	var c model.Car
	require.NoError(t, f.db.First(&c, id).Error)
	return c.Available
}

func TestApproveMarksCarUnavailable(t *testing.T) {
	f := newFixture(t)
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	sibling := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)

	require.NoError(t, f.wf.Approve(context.Background(), d.ID, f.owner.ID))

	assert.Equal(t, model.DealApproved, f.status(t, d.ID))
	assert.Equal(t, model.DealWaiting, f.status(t, sibling.ID))
	assert.False(t, f.available(t, f.car.ID))

	var stored model.DealRequest
	require.NoError(t, f.db.First(&stored, d.ID).Error)
	assert.Nil(t, stored.DateApproved)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.DealRequestsApproved))
	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, queue.EventDealApproved, ev.Type)
	assert.Equal(t, d.ID, ev.DealRequestID)
	assert.Equal(t, "Golf", ev.CarTitle)
	assert.Equal(t, f.owner.ID, ev.OwnerID)
	assert.Equal(t, "seeker@example.com", ev.SeekerEmail)
	assert.Equal(t, "approved", ev.Status)
}

func TestApproveRollsBackWhenCarWriteFails(t *testing.T) {
	f := newFixture(t)
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	errCarWrite := errors.New("car write failed")
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("fail_car_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "cars" {
			_ = tx.AddError(errCarWrite)
		}
	}))

	err := f.wf.Approve(context.Background(), d.ID, f.owner.ID)
	require.ErrorIs(t, err, errCarWrite)

	assert.Equal(t, model.DealWaiting, f.status(t, d.ID))
	assert.True(t, f.available(t, f.car.ID))
	assert.Empty(t, f.pub.events)
	assert.Zero(t, testutil.ToFloat64(f.m.DealRequestsApproved))
}

func TestRejectKeepsCarAvailable(t *testing.T) {
	f := newFixture(t)
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)

	require.NoError(t, f.wf.Reject(context.Background(), d.ID, f.owner.ID))

	assert.Equal(t, model.DealRejected, f.status(t, d.ID))
	assert.True(t, f.available(t, f.car.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.DealRequestsRejected))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, queue.EventDealRejected, f.pub.events[0].Type)
}

func TestDecisionByNonOwnerIsNotFound(t *testing.T) {
	f := newFixture(t)
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	ctx := context.Background()

	assert.ErrorIs(t, f.wf.Approve(ctx, d.ID, f.other.ID), repository.ErrDealRequestNotFound)
	assert.ErrorIs(t, f.wf.Reject(ctx, d.ID, f.seeker.ID), repository.ErrDealRequestNotFound)

	assert.Equal(t, model.DealWaiting, f.status(t, d.ID))
	assert.True(t, f.available(t, f.car.ID))
	assert.Empty(t, f.pub.events)
}

func TestDecisionOnDecidedOrMissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	ctx := context.Background()
	require.NoError(t, f.wf.Reject(ctx, d.ID, f.owner.ID))

	assert.ErrorIs(t, f.wf.Approve(ctx, d.ID, f.owner.ID), repository.ErrDealRequestNotFound)
	assert.ErrorIs(t, f.wf.Reject(ctx, d.ID, f.owner.ID), repository.ErrDealRequestNotFound)
	assert.ErrorIs(t, f.wf.Approve(ctx, d.ID+99, f.owner.ID), repository.ErrDealRequestNotFound)

	assert.Equal(t, model.DealRejected, f.status(t, d.ID))
	assert.True(t, f.available(t, f.car.ID))
}

func TestApproveSecondRequestOnSoldCar(t *testing.T) {
	f := newFixture(t)
	first := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	second := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)
	ctx := context.Background()

	require.NoError(t, f.wf.Approve(ctx, first.ID, f.owner.ID))
	require.NoError(t, f.wf.Approve(ctx, second.ID, f.owner.ID))

	assert.Equal(t, model.DealApproved, f.status(t, second.ID))
	assert.False(t, f.available(t, f.car.ID))
}

func TestPublishFailureDoesNotFailDecision(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	d := dbtest.DealRequest(t, f.db, f.car.ID, f.seeker.ID)

	require.NoError(t, f.wf.Approve(context.Background(), d.ID, f.owner.ID))
	assert.Equal(t, model.DealApproved, f.status(t, d.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.EventPublishFailures.WithLabelValues(queue.EventDealApproved)))
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.wf.Submit(ctx, f.car.ID, f.seeker.ID, "   ")
	assert.ErrorIs(t, err, service.ErrCommentRequired)

	_, err = f.wf.Submit(ctx, f.car.ID+50, f.seeker.ID, "hi")
	assert.ErrorIs(t, err, repository.ErrCarNotFound)

	// unavailable cars still accept requests
	require.NoError(t, f.db.Model(&model.Car{}).Where("id = ?", f.car.ID).Update("available", false).Error)
	d, err := f.wf.Submit(ctx, f.car.ID, f.seeker.ID, "still interested")
	require.NoError(t, err)
	assert.Equal(t, model.DealWaiting, f.status(t, d.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.DealRequestsSubmitted))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, queue.EventDealSubmitted, f.pub.events[0].Type)
	assert.Equal(t, "waiting", f.pub.events[0].Status)
}
