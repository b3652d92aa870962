package directory

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"countyconnect/internal/expiry"
	"countyconnect/internal/store/memory"
	"countyconnect/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc *Service
	mem *memory.Store
	now time.Time

	admin *types.User
	alice *types.User
	bob   *types.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: t0}
	clock := func() time.Time { return f.now }
	f.mem = memory.New().WithClock(clock)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f.svc = New(logger, Stores{
		Listings:    f.mem,
		Towns:       f.mem,
		Users:       f.mem,
		Claims:      f.mem,
		Transitions: f.mem,
	}, nil, &expiry.Calculator{Now: clock})

	ctx := context.Background()
	require.NoError(t, f.mem.UpsertTown(ctx, &types.Town{ID: "T1", Name: "Millbrook", Slug: "millbrook"}))
	require.NoError(t, f.mem.UpsertTown(ctx, &types.Town{ID: "T2", Name: "Pine Ridge", Slug: "pine-ridge"}))

	f.admin = f.user(t, "admin", types.UserRoleAdmin, nil)
	f.alice = f.user(t, "alice", types.UserRoleMember, str("T1"))
	f.bob = f.user(t, "bob", types.UserRoleMember, nil)

	return f
}

func (f *fixture) user(t *testing.T, id string, role types.UserRole, town *string) *types.User {
	t.Helper()
	u := &types.User{ID: id, Email: str(id + "@example.com"), Role: role, PreferredTownID: town}
	require.NoError(t, f.mem.UpsertUser(context.Background(), u))
	return u
}

func (f *fixture) create(t *testing.T, actor *types.User, kind types.ListingKind, input types.ListingInput) *types.Listing {
	t.Helper()
	l, err := f.svc.CreateListing(context.Background(), actor, kind, input)
	require.NoError(t, err)
	return l
}

func (f *fixture) transition(t *testing.T, actor *types.User, l *types.Listing, action types.LifecycleAction) *types.Listing {
	t.Helper()
	out, err := f.svc.Transition(context.Background(), actor, l.Kind, l.ID, action)
	require.NoError(t, err)
	return out
}

func str(s string) *string { return &s }

func days(n string) *json.Number {
	v := json.Number(n)
	return &v
}

func titles(views []*types.ListingView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}
