// Package lifecycle holds the moderation state machines for listings.
//
// Every kind belongs to one family:
//
//	standard:    pending -approve-> active -suspend-> suspended -reactivate-> active
//	two-step:    pending -approve-> approved -approve-> active, suspend from approved or active
//	marketplace: draft -submit-> pending -approve-> active -suspend-> hidden -reactivate-> active
//
// Food trucks are the only two-step kind. Suspending something that is already
// suspended (or hidden) is a no-op.
package lifecycle

import (
	"fmt"

	"countyconnect/pkg/types"
)

type Family string

const (
	FamilyStandard    Family = "standard"
	FamilyTwoStep     Family = "two-step"
	FamilyMarketplace Family = "marketplace"
)

type edge struct {
	from   types.ListingStatus
	action types.LifecycleAction
}

// Machine is an immutable transition table.
type Machine struct {
	family   Family
	initial  types.ListingStatus
	visible  types.ListingStatus
	parked   types.ListingStatus
	statuses []types.ListingStatus
	edges    map[edge]types.ListingStatus
}

var (
	standard = &Machine{
		family:  FamilyStandard,
		initial: types.ListingStatusPending,
		visible: types.ListingStatusActive,
		parked:  types.ListingStatusSuspended,
		statuses: []types.ListingStatus{
			types.ListingStatusPending,
			types.ListingStatusActive,
			types.ListingStatusSuspended,
		},
		edges: map[edge]types.ListingStatus{
			{types.ListingStatusPending, types.ActionApprove}:      types.ListingStatusActive,
			{types.ListingStatusActive, types.ActionSuspend}:       types.ListingStatusSuspended,
			{types.ListingStatusSuspended, types.ActionReactivate}: types.ListingStatusActive,
		},
	}

	twoStep = &Machine{
		family:  FamilyTwoStep,
		initial: types.ListingStatusPending,
		visible: types.ListingStatusActive,
		parked:  types.ListingStatusSuspended,
		statuses: []types.ListingStatus{
			types.ListingStatusPending,
			types.ListingStatusApproved,
			types.ListingStatusActive,
			types.ListingStatusSuspended,
		},
		edges: map[edge]types.ListingStatus{
			{types.ListingStatusPending, types.ActionApprove}:      types.ListingStatusApproved,
			{types.ListingStatusApproved, types.ActionApprove}:     types.ListingStatusActive,
			{types.ListingStatusApproved, types.ActionSuspend}:     types.ListingStatusSuspended,
			{types.ListingStatusActive, types.ActionSuspend}:       types.ListingStatusSuspended,
			{types.ListingStatusSuspended, types.ActionReactivate}: types.ListingStatusActive,
		},
	}

	marketplace = &Machine{
		family:  FamilyMarketplace,
		initial: types.ListingStatusDraft,
		visible: types.ListingStatusActive,
		parked:  types.ListingStatusHidden,
		statuses: []types.ListingStatus{
			types.ListingStatusDraft,
			types.ListingStatusPending,
			types.ListingStatusActive,
			types.ListingStatusHidden,
		},
		edges: map[edge]types.ListingStatus{
			{types.ListingStatusDraft, types.ActionSubmit}:      types.ListingStatusPending,
			{types.ListingStatusPending, types.ActionApprove}:   types.ListingStatusActive,
			{types.ListingStatusActive, types.ActionSuspend}:    types.ListingStatusHidden,
			{types.ListingStatusHidden, types.ActionReactivate}: types.ListingStatusActive,
		},
	}
)

// ForKind returns the machine governing kind.
func ForKind(kind types.ListingKind) *Machine {
	switch kind {
	case types.ListingKindFoodTruck:
		return twoStep
	case types.ListingKindStore, types.ListingKindProduct, types.ListingKindServicePage:
		return marketplace
	default:
		return standard
	}
}

func (m *Machine) Family() Family { return m.family }

// Visible is the only status shown on public pages.
func (m *Machine) Visible() types.ListingStatus { return m.visible }

// Initial is the status a new listing starts in. Trusted creators (admins)
// skip moderation.
func (m *Machine) Initial(trusted bool) types.ListingStatus {
	if trusted {
		return m.visible
	}
	return m.initial
}

func (m *Machine) Statuses() []types.ListingStatus {
	out := make([]types.ListingStatus, len(m.statuses))
	copy(out, m.statuses)
	return out
}

func (m *Machine) Valid(status types.ListingStatus) bool {
	for _, s := range m.statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Apply returns the status after performing action on a listing in status
// from. changed is false for the idempotent suspend of a parked listing.
func (m *Machine) Apply(from types.ListingStatus, action types.LifecycleAction) (to types.ListingStatus, changed bool, err error) {
	if action == types.ActionSuspend && from == m.parked {
		return from, false, nil
	}

	next, ok := m.edges[edge{from, action}]
	if !ok {
		return from, false, fmt.Errorf("%w: cannot %s a %s listing", types.ErrInvalidTransition, action, from)
	}

	return next, true, nil
}

// Allowed lists the actions that move a listing out of status.
func (m *Machine) Allowed(status types.ListingStatus) []types.LifecycleAction {
	out := make([]types.LifecycleAction, 0, 2)
	for _, action := range []types.LifecycleAction{types.ActionSubmit, types.ActionApprove, types.ActionSuspend, types.ActionReactivate} {
		if _, ok := m.edges[edge{status, action}]; ok {
			out = append(out, action)
		}
	}
	return out
}

// AdminOnly reports whether action is reserved for moderators. Owners may
// only submit their own drafts.
func AdminOnly(action types.LifecycleAction) bool {
	return action != types.ActionSubmit
}

func ParseAction(v string) (types.LifecycleAction, error) {
	switch a := types.LifecycleAction(v); a {
	case types.ActionSubmit, types.ActionApprove, types.ActionSuspend, types.ActionReactivate:
		return a, nil
	}
	return "", types.FieldError("action", fmt.Sprintf("unknown action %q", v))
}
