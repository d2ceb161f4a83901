package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	affiliatedto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/affiliate"
	relationsdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/relations"
)

func TestSetSponsor(t *testing.T) {
	ctx := context.Background()

	t.Run("creates link and emits event", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")

		link, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "bob", SponsorID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "bob", link.UserID)
		assert.Equal(t, "alice", link.SponsorID)

		sponsor, err := f.hierarchy.GetSponsor(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "alice", sponsor)

		events := f.sink.ofType(domain.EventSponsorSet)
		require.Len(t, events, 1)
		assert.Equal(t, "bob", events[0].Key)
		assert.Equal(t, domain.SponsorSetData{UserID: "bob", SponsorID: "alice", CreatedAt: link.CreatedAt}, events[0].Data)
	})

	t.Run("rejects self sponsorship", func(t *testing.T) {
		f := newFixture(t, "alice")

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "alice", SponsorID: "alice"})
		assert.ErrorIs(t, err, domain.ErrSelfSponsorship)
		assert.Empty(t, f.sink.events)
	})

	t.Run("first sponsor wins", func(t *testing.T) {
		f := newFixture(t, "alice", "bob", "carol")
		f.sponsor(t, "carol", "alice")

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "carol", SponsorID: "bob"})
		assert.ErrorIs(t, err, domain.ErrSponsorAlreadySet)

		sponsor, err := f.hierarchy.GetSponsor(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, "alice", sponsor)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, "alice")

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "ghost", SponsorID: "alice"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "alice", SponsorID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("identity outage is retryable", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		f.identity.fail(errors.New("connection refused"))

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "bob", SponsorID: "alice"})
		assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
		assert.True(t, domain.IsRetryable(err))

		_, err = f.hierarchy.GetSponsor(ctx, "bob")
		assert.ErrorIs(t, err, domain.ErrSponsorNotFound)
	})

	t.Run("missing user id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{SponsorID: "alice"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "bob"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("rejects sponsor from own downline", func(t *testing.T) {
		f := newFixture(t)
		f.chain(t, "alice", "bob", "carol")

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "alice", SponsorID: "carol"})
		assert.ErrorIs(t, err, domain.ErrSponsorIsDescendant)

		_, err = f.hierarchy.GetSponsor(ctx, "alice")
		assert.ErrorIs(t, err, domain.ErrSponsorNotFound)
	})

	t.Run("event sink failure does not undo the link", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		f.sink.err = errors.New("broker down")

		_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "bob", SponsorID: "alice"})
		require.NoError(t, err)

		sponsor, err := f.hierarchy.GetSponsor(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "alice", sponsor)
	})
}

func TestSetSponsorConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "newbie")
	const sponsors = 16
	for i := 0; i < sponsors; i++ {
		f.identity.add(fmt.Sprintf("sponsor-%d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		rejected  int
	)
	for i := 0; i < sponsors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sponsor-%d", i)
			_, err := f.hierarchy.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: "newbie", SponsorID: id})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded = append(succeeded, id)
				return
			}
			if errors.Is(err, domain.ErrSponsorAlreadySet) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, succeeded, 1)
	assert.Equal(t, sponsors-1, rejected)

	sponsor, err := f.hierarchy.GetSponsor(ctx, "newbie")
	require.NoError(t, err)
	assert.Equal(t, succeeded[0], sponsor)
	assert.Len(t, f.sink.ofType(domain.EventSponsorSet), 1)
}

func TestSetSponsorByCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	profile, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice"})
	require.NoError(t, err)

	link, err := f.hierarchy.SetSponsorByCode(ctx, "bob", profile.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, "alice", link.SponsorID)

	_, err = f.hierarchy.SetSponsorByCode(ctx, "bob", "NOSUCHCODE")
	assert.ErrorIs(t, err, domain.ErrAffiliateNotFound)

	_, err = f.hierarchy.SetSponsorByCode(ctx, "bob", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetUpline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%02d", i)
	}
	f.chain(t, ids...)
	leaf := ids[len(ids)-1]

	t.Run("stops at nine levels", func(t *testing.T) {
		upline, err := f.hierarchy.GetUpline(ctx, leaf, domain.MaxLevels)
		require.NoError(t, err)
		require.Len(t, upline, domain.MaxLevels)
		for i, entry := range upline {
			assert.Equal(t, i+1, entry.Level)
			assert.Equal(t, ids[len(ids)-2-i], entry.AncestorID)
		}
	})

	t.Run("out of range max levels is clamped", func(t *testing.T) {
		for _, n := range []int{0, -1, 50} {
			upline, err := f.hierarchy.GetUpline(ctx, leaf, n)
			require.NoError(t, err)
			assert.Len(t, upline, domain.MaxLevels, "max_levels=%d", n)
		}
	})

	t.Run("respects smaller max levels", func(t *testing.T) {
		upline, err := f.hierarchy.GetUpline(ctx, leaf, 3)
		require.NoError(t, err)
		assert.Len(t, upline, 3)
	})

	t.Run("stops at root", func(t *testing.T) {
		upline, err := f.hierarchy.GetUpline(ctx, ids[2], domain.MaxLevels)
		require.NoError(t, err)
		assert.Equal(t, []domain.UplineEntry{{Level: 1, AncestorID: ids[1]}, {Level: 2, AncestorID: ids[0]}}, upline)

		upline, err = f.hierarchy.GetUpline(ctx, ids[0], domain.MaxLevels)
		require.NoError(t, err)
		assert.Empty(t, upline)
	})
}

func TestGetUplineDetectsCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// written straight to the repository, bypassing the descendant check
	require.NoError(t, f.hierarchyRepo.CreateSponsorLink(ctx, &domain.SponsorLink{UserID: "a", SponsorID: "b", CreatedAt: f.clock.Now()}))
	require.NoError(t, f.hierarchyRepo.CreateSponsorLink(ctx, &domain.SponsorLink{UserID: "b", SponsorID: "c", CreatedAt: f.clock.Now()}))
	require.NoError(t, f.hierarchyRepo.CreateSponsorLink(ctx, &domain.SponsorLink{UserID: "c", SponsorID: "a", CreatedAt: f.clock.Now()}))

	_, err := f.hierarchy.GetUpline(ctx, "a", domain.MaxLevels)
	assert.ErrorIs(t, err, domain.ErrCyclicHierarchy)
	assert.True(t, domain.IsInvariantViolation(err))

	_, err = f.hierarchy.GetAllDownline(ctx, "a", domain.MaxLevels)
	assert.ErrorIs(t, err, domain.ErrCyclicHierarchy)
}

func TestDownline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	//        root
	//       /    \
	//      a      b
	//     / \     |
	//    c   d    e
	//    |
	//    g
	f.sponsor(t, "a", "root")
	f.sponsor(t, "b", "root")
	f.sponsor(t, "c", "a")
	f.sponsor(t, "d", "a")
	f.sponsor(t, "e", "b")
	f.sponsor(t, "g", "c")

	t.Run("direct downline newest first", func(t *testing.T) {
		members, err := f.hierarchy.GetDirectDownline(ctx, "root")
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "b", members[0].MemberID)
		assert.Equal(t, "a", members[1].MemberID)
		for _, m := range members {
			assert.Equal(t, 1, m.Level)
			assert.Equal(t, "root", m.SponsorID)
		}
	})

	t.Run("all downline by level", func(t *testing.T) {
		members, err := f.hierarchy.GetAllDownline(ctx, "root", domain.MaxLevels)
		require.NoError(t, err)
		levels := make(map[string]int)
		for _, m := range members {
			levels[m.MemberID] = m.Level
		}
		assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 2, "d": 2, "e": 2, "g": 3}, levels)

		for i := 1; i < len(members); i++ {
			assert.LessOrEqual(t, members[i-1].Level, members[i].Level)
		}
	})

	t.Run("max levels limits depth", func(t *testing.T) {
		members, err := f.hierarchy.GetAllDownline(ctx, "root", 2)
		require.NoError(t, err)
		assert.Len(t, members, 5)
	})

	t.Run("direct and full team size differ", func(t *testing.T) {
		direct, err := f.hierarchy.GetDirectTeamSize(ctx, "root")
		require.NoError(t, err)
		full, err := f.hierarchy.GetFullTeamSize(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, 2, direct)
		assert.Equal(t, 6, full)
	})

	t.Run("leaf has no downline", func(t *testing.T) {
		members, err := f.hierarchy.GetAllDownline(ctx, "g", domain.MaxLevels)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}
