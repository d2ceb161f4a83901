package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/memory"
	relationsdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/relations"
)

type fakeIdentity struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newFakeIdentity(ids ...string) *fakeIdentity {
	f := &fakeIdentity{users: make(map[string]*domain.User)}
	for _, id := range ids {
		f.add(id)
	}
	return f
}

func (f *fakeIdentity) add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &domain.User{ID: id, DisplayName: "User " + id, Email: id + "@example.com"}
}

func (f *fakeIdentity) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func (f *fakeIdentity) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeIdentity) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeIdentity) UserExists(ctx context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.users[userID]
	return ok, nil
}

type fakePurchases struct {
	mu      sync.Mutex
	totals  map[string]decimal.Decimal
	failFor map[string]error
	periods []domain.DateRange
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{totals: make(map[string]decimal.Decimal), failFor: make(map[string]error)}
}

func (f *fakePurchases) set(userID, total string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals[userID] = decimal.RequireFromString(total)
}

func (f *fakePurchases) failOn(userID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor[userID] = err
}

func (f *fakePurchases) seenPeriods() []domain.DateRange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.DateRange(nil), f.periods...)
}

func (f *fakePurchases) GetPurchaseTotal(ctx context.Context, userID string, period domain.DateRange) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, period)
	if err, ok := f.failFor[userID]; ok {
		return decimal.Zero, err
	}
	if total, ok := f.totals[userID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (s *recordingSink) Emit(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) ofType(t domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// steppingClock returns base, base+1s, base+2s... so creation order is observable.
type steppingClock struct {
	mu   sync.Mutex
	next time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{next: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Second)
	return t
}

type fixture struct {
	store          *memory.Store
	hierarchyRepo  *memory.HierarchyRepository
	affiliateRepo  *memory.AffiliateRepository
	commissionRepo *memory.CommissionRepository
	ledgerRepo     *memory.LedgerRepository

	identity  *fakeIdentity
	purchases *fakePurchases
	sink      *recordingSink
	clock     *steppingClock

	hierarchy   *DefaultHierarchyUsecase
	affiliates  *DefaultAffiliateUsecase
	commissions *DefaultCommissionUsecase
	ledger      *DefaultLedgerUsecase
	team        *DefaultTeamUsecase
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		store:          store,
		hierarchyRepo:  memory.NewHierarchyRepository(store),
		affiliateRepo:  memory.NewAffiliateRepository(store),
		commissionRepo: memory.NewCommissionRepository(store),
		ledgerRepo:     memory.NewLedgerRepository(store),
		identity:       newFakeIdentity(users...),
		purchases:      newFakePurchases(),
		sink:           &recordingSink{},
		clock:          newSteppingClock(),
	}
	logger := zap.NewNop()
	geo := domain.BangladeshGeo()

	f.hierarchy = NewDefaultHierarchyUsecase(f.hierarchyRepo, f.affiliateRepo, f.identity, f.sink, nil, logger)
	f.hierarchy.now = f.clock.Now
	f.affiliates = NewDefaultAffiliateUsecase(f.affiliateRepo, f.identity, geo, nil, logger)
	f.affiliates.now = f.clock.Now
	f.commissions = NewDefaultCommissionUsecase(f.hierarchy, f.commissionRepo, domain.DefaultRateTable(), f.sink, nil, logger)
	f.commissions.now = f.clock.Now
	f.ledger = NewDefaultLedgerUsecase(f.ledgerRepo, f.commissionRepo, f.sink, nil, logger)
	f.ledger.now = f.clock.Now
	f.team = NewDefaultTeamUsecase(f.hierarchy, f.commissionRepo, f.affiliateRepo, f.identity, f.purchases, geo,
		TeamConfig{Concurrency: 4, Location: time.UTC}, nil, logger)
	return f
}

// chain links ids[i+1] under ids[i]; ids[0] is the root.
func (f *fixture) chain(t *testing.T, ids ...string) {
	t.Helper()
	for i := 1; i < len(ids); i++ {
		f.sponsor(t, ids[i], ids[i-1])
	}
}

func (f *fixture) sponsor(t *testing.T, userID, sponsorID string) {
	t.Helper()
	for _, id := range []string{userID, sponsorID} {
		if ok, _ := f.identity.UserExists(context.Background(), id); !ok {
			f.identity.add(id)
		}
	}
	_, err := f.hierarchy.SetSponsor(context.Background(), &relationsdto.SetSponsorInput{UserID: userID, SponsorID: sponsorID})
	require.NoError(t, err)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
