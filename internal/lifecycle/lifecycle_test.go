package lifecycle

import (
	"testing"

	"countyconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForKind(t *testing.T) {
	assert.Equal(t, FamilyTwoStep, ForKind(types.ListingKindFoodTruck).Family())
	assert.Equal(t, FamilyMarketplace, ForKind(types.ListingKindStore).Family())
	assert.Equal(t, FamilyMarketplace, ForKind(types.ListingKindProduct).Family())
	assert.Equal(t, FamilyMarketplace, ForKind(types.ListingKindServicePage).Family())

	for _, k := range []types.ListingKind{
		types.ListingKindChurch,
		types.ListingKindCommunityResource,
		types.ListingKindSportsTeam,
		types.ListingKindSchool,
		types.ListingKindBulletinPost,
	} {
		assert.Equal(t, FamilyStandard, ForKind(k).Family(), k)
	}
}

func TestStandard_ApproveTwiceFails(t *testing.T) {
	m := ForKind(types.ListingKindChurch)

	to, changed, err := m.Apply(types.ListingStatusPending, types.ActionApprove)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, types.ListingStatusActive, to)

	_, _, err = m.Apply(to, types.ActionApprove)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestTwoStep_Approve(t *testing.T) {
	m := ForKind(types.ListingKindFoodTruck)

	to, _, err := m.Apply(types.ListingStatusPending, types.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, types.ListingStatusApproved, to)

	to, _, err = m.Apply(to, types.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, types.ListingStatusActive, to)

	_, _, err = m.Apply(to, types.ActionApprove)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	to, _, err = m.Apply(types.ListingStatusApproved, types.ActionSuspend)
	require.NoError(t, err)
	assert.Equal(t, types.ListingStatusSuspended, to)
}

func TestSuspendReactivateRoundTrip(t *testing.T) {
	for _, kind := range []types.ListingKind{types.ListingKindChurch, types.ListingKindFoodTruck, types.ListingKindStore} {
		m := ForKind(kind)

		parked, changed, err := m.Apply(types.ListingStatusActive, types.ActionSuspend)
		require.NoError(t, err, kind)
		assert.True(t, changed)

		back, _, err := m.Apply(parked, types.ActionReactivate)
		require.NoError(t, err, kind)
		assert.Equal(t, types.ListingStatusActive, back, kind)
	}
}

func TestSuspendIsIdempotent(t *testing.T) {
	to, changed, err := ForKind(types.ListingKindChurch).Apply(types.ListingStatusSuspended, types.ActionSuspend)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, types.ListingStatusSuspended, to)

	to, changed, err = ForKind(types.ListingKindProduct).Apply(types.ListingStatusHidden, types.ActionSuspend)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, types.ListingStatusHidden, to)
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		kind   types.ListingKind
		from   types.ListingStatus
		action types.LifecycleAction
	}{
		{types.ListingKindChurch, types.ListingStatusSuspended, types.ActionApprove},
		{types.ListingKindChurch, types.ListingStatusPending, types.ActionSuspend},
		{types.ListingKindChurch, types.ListingStatusPending, types.ActionReactivate},
		{types.ListingKindChurch, types.ListingStatusActive, types.ActionReactivate},
		{types.ListingKindChurch, types.ListingStatusPending, types.ActionSubmit},
		{types.ListingKindFoodTruck, types.ListingStatusSuspended, types.ActionApprove},
		{types.ListingKindFoodTruck, types.ListingStatusApproved, types.ActionReactivate},
		{types.ListingKindStore, types.ListingStatusDraft, types.ActionApprove},
		{types.ListingKindStore, types.ListingStatusPending, types.ActionSubmit},
		{types.ListingKindStore, types.ListingStatusDraft, types.ActionSuspend},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			to, changed, err := ForKind(tt.kind).Apply(tt.from, tt.action)
			assert.ErrorIs(t, err, types.ErrInvalidTransition)
			assert.False(t, changed)
			assert.Equal(t, tt.from, to)
		})
	}
}

func TestMarketplace(t *testing.T) {
	m := ForKind(types.ListingKindStore)
	assert.Equal(t, types.ListingStatusDraft, m.Initial(false))
	assert.Equal(t, types.ListingStatusActive, m.Initial(true))

	to, _, err := m.Apply(types.ListingStatusDraft, types.ActionSubmit)
	require.NoError(t, err)
	assert.Equal(t, types.ListingStatusPending, to)

	to, _, err = m.Apply(to, types.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, types.ListingStatusActive, to)
}

func TestAllowed(t *testing.T) {
	m := ForKind(types.ListingKindFoodTruck)
	assert.Equal(t, []types.LifecycleAction{types.ActionApprove, types.ActionSuspend}, m.Allowed(types.ListingStatusApproved))
	assert.Equal(t, []types.LifecycleAction{types.ActionReactivate}, m.Allowed(types.ListingStatusSuspended))
}

func TestValidAndParse(t *testing.T) {
	assert.True(t, ForKind(types.ListingKindChurch).Valid(types.ListingStatusSuspended))
	assert.False(t, ForKind(types.ListingKindChurch).Valid(types.ListingStatusHidden))
	assert.True(t, ForKind(types.ListingKindProduct).Valid(types.ListingStatusHidden))

	a, err := ParseAction("approve")
	require.NoError(t, err)
	assert.Equal(t, types.ActionApprove, a)

	_, err = ParseAction("delete")
	assert.ErrorIs(t, err, types.ErrValidation)

	assert.False(t, AdminOnly(types.ActionSubmit))
	assert.True(t, AdminOnly(types.ActionApprove))
}
