package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestDealStatusTransition(t *testing.T) {
    next, err := DealWaiting.Transition(DealApproved)
    assert.NoError(t, err)
    assert.Equal(t, DealApproved, next)

    next, err = DealWaiting.Transition(DealRejected)
    assert.NoError(t, err)
    assert.Equal(t, DealRejected, next)

    for _, from := range []DealStatus{DealApproved, DealRejected} {
        for _, to := range []DealStatus{DealWaiting, DealApproved, DealRejected} {
            got, err := from.Transition(to)
            assert.Error(t, err, "%s -> %s", from, to)
            assert.Equal(t, from, got)
        }
    }

    _, err = DealWaiting.Transition(DealWaiting)
    assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
    assert.True(t, IsOwner(RoleOwner))
    assert.False(t, IsOwner(RoleSeeker))
    assert.True(t, IsSeeker(RoleSeeker))
    assert.False(t, IsSeeker(RoleOwner))
    assert.False(t, IsOwner(""))
    assert.False(t, IsSeeker(""))
}

func TestNormalizeRole(t *testing.T) {
    assert.Equal(t, RoleOwner, NormalizeRole(" owner "))
    assert.Equal(t, RoleSeeker, NormalizeRole("seeker"))
    assert.Equal(t, RoleSeeker, NormalizeRole("admin"))
    assert.Equal(t, RoleSeeker, NormalizeRole(""))
}

func TestListingTypeValid(t *testing.T) {
    assert.True(t, ListingRent.Valid())
    assert.True(t, ListingSale.Valid())
    assert.False(t, ListingType("lease").Valid())
}
