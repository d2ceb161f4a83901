package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	affiliatedto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/affiliate"
)

func TestRegisterAffiliate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a referral code", func(t *testing.T) {
		f := newFixture(t, "alice")

		profile, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice", District: "cox's bazar"})
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.UserID)
		assert.Equal(t, "Cox's Bazar", profile.District)
		require.Len(t, profile.ReferralCode, referralCodeLength)
		for _, r := range profile.ReferralCode {
			assert.True(t, strings.ContainsRune(referralCodeAlphabet, r), "unexpected rune %q", r)
		}

		stored, err := f.affiliates.GetAffiliate(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, profile.ReferralCode, stored.ReferralCode)
	})

	t.Run("district is optional", func(t *testing.T) {
		f := newFixture(t, "alice")

		profile, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice"})
		require.NoError(t, err)
		assert.Empty(t, profile.District)
	})

	t.Run("registers once", func(t *testing.T) {
		f := newFixture(t, "alice")

		_, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice"})
		require.NoError(t, err)
		_, err = f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice"})
		assert.ErrorIs(t, err, domain.ErrAffiliateExists)
	})

	t.Run("rejects unknown input", func(t *testing.T) {
		f := newFixture(t, "alice")

		_, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice", District: "Gotham"})
		assert.ErrorIs(t, err, domain.ErrUnknownDistrict)

		_, err = f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("identity outage", func(t *testing.T) {
		f := newFixture(t, "alice")
		f.identity.fail(errors.New("503"))

		_, err := f.affiliates.RegisterAffiliate(ctx, &affiliatedto.RegisterAffiliateInput{UserID: "alice"})
		assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
	})

	t.Run("unknown affiliate", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.affiliates.GetAffiliate(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrAffiliateNotFound)
	})
}
