package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optivem/eshop-backend/internal/clock"
	"github.com/optivem/eshop-backend/internal/domain/validation"
)

// --- Mock implementations ---

type mockCouponRepo struct {
	byCode     map[string]*Coupon
	findErr    error
	createErr  error
	created    *Coupon
	increments []string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byCode[code]
	if !ok {
		return nil, ErrUnknownCoupon
	}
	return c, nil
}

func (m *mockCouponRepo) Exists(_ context.Context, code string) (bool, error) {
	_, ok := m.byCode[code]
	return ok, nil
}

func (m *mockCouponRepo) Create(_ context.Context, c *Coupon) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = c
	return nil
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error) {
	out := make([]Coupon, 0, len(m.byCode))
	for _, c := range m.byCode {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCouponRepo) IncrementUsage(_ context.Context, code string) error {
	m.increments = append(m.increments, code)
	if c, ok := m.byCode[code]; ok {
		c.UsedCount++
	}
	return nil
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newRepo(coupons ...*Coupon) *mockCouponRepo {
	byCode := make(map[string]*Coupon, len(coupons))
	for _, c := range coupons {
		byCode[c.Code] = c
	}
	return &mockCouponRepo{byCode: byCode}
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockCouponRepo) *Service {
	return NewService(repo, clock.Fixed{Time: fixedNow})
}

// --- Create ---

func TestCreate_Valid(t *testing.T) {
	repo := newRepo()
	svc := newTestService(repo)

	from := fixedNow.Add(time.Hour)
	to := fixedNow.Add(48 * time.Hour)
	limit := 5

	c, err := svc.Create(context.Background(), CreateParams{
		Code:         "SAVE10",
		DiscountRate: d("0.10"),
		ValidFrom:    &from,
		ValidTo:      &to,
		UsageLimit:   &limit,
	})
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", c.Code)
	assert.True(t, d("0.10").Equal(c.DiscountRate))
	assert.Equal(t, 0, c.UsedCount)
	require.NotNil(t, repo.created)
	assert.Equal(t, "SAVE10", repo.created.Code)
}

func TestCreate_FullRateWithoutWindow(t *testing.T) {
	svc := newTestService(newRepo())

	c, err := svc.Create(context.Background(), CreateParams{
		Code:         "FREEBIE",
		DiscountRate: d("1"),
	})
	require.NoError(t, err)
	assert.Nil(t, c.ValidFrom)
	assert.Nil(t, c.ValidTo)
	assert.Nil(t, c.UsageLimit)
}

func TestCreate_Validation(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	later := fixedNow.Add(2 * time.Hour)
	negative := -1

	tests := []struct {
		name      string
		params    CreateParams
		wantField string
		wantErr   error
	}{
		{
			name:      "blank code",
			params:    CreateParams{Code: "   ", DiscountRate: d("0.10")},
			wantField: "code",
		},
		{
			name:      "zero rate",
			params:    CreateParams{Code: "X", DiscountRate: decimal.Zero},
			wantField: "discountRate",
		},
		{
			name:      "rate above one",
			params:    CreateParams{Code: "X", DiscountRate: d("1.01")},
			wantField: "discountRate",
		},
		{
			name:      "valid-to precedes valid-from",
			params:    CreateParams{Code: "X", DiscountRate: d("0.10"), ValidFrom: &later, ValidTo: &future},
			wantField: "validTo",
		},
		{
			name:      "negative usage limit",
			params:    CreateParams{Code: "X", DiscountRate: d("0.10"), UsageLimit: &negative},
			wantField: "usageLimit",
		},
		{
			name:    "valid-from in the past",
			params:  CreateParams{Code: "X", DiscountRate: d("0.10"), ValidFrom: &past},
			wantErr: ErrWindowInPast,
		},
		{
			name:    "valid-from exactly now",
			params:  CreateParams{Code: "X", DiscountRate: d("0.10"), ValidFrom: &fixedNow},
			wantErr: ErrWindowInPast,
		},
		{
			name:    "valid-to in the past",
			params:  CreateParams{Code: "X", DiscountRate: d("0.10"), ValidTo: &past},
			wantErr: ErrWindowInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			_, err := newTestService(repo).Create(context.Background(), tt.params)
			require.Error(t, err)
			assert.Nil(t, repo.created)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var vErr *validation.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	repo := newRepo(&Coupon{Code: "SAVE10", DiscountRate: d("0.10")})
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateParams{
		Code:         "SAVE10",
		DiscountRate: d("0.20"),
	})
	require.ErrorIs(t, err, ErrDuplicateCode)
	assert.Nil(t, repo.created)
}

// --- Discount ---

func TestDiscount_BlankCodeMeansNoCoupon(t *testing.T) {
	svc := newTestService(newRepo())

	for _, code := range []string{"", "   "} {
		rate, err := svc.Discount(context.Background(), code)
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
	}
}

func TestDiscount_UnknownCode(t *testing.T) {
	svc := newTestService(newRepo())

	_, err := svc.Discount(context.Background(), "MISSING")
	require.ErrorIs(t, err, ErrUnknownCoupon)
}

func TestDiscount_ValidityWindowBoundaries(t *testing.T) {
	from := fixedNow.Add(time.Second)
	to := fixedNow.Add(2 * time.Second)
	c := &Coupon{Code: "WINDOW", DiscountRate: d("0.10"), ValidFrom: &from, ValidTo: &to}

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "1ms before valid-from", now: from.Add(-time.Millisecond), wantErr: ErrNotYetValid},
		{name: "exactly valid-from", now: from},
		{name: "inside window", now: from.Add(500 * time.Millisecond)},
		{name: "exactly valid-to", now: to},
		{name: "1ms after valid-to", now: to.Add(time.Millisecond), wantErr: ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newRepo(c), clock.Fixed{Time: tt.now})
			rate, err := svc.Discount(context.Background(), "WINDOW")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, d("0.10").Equal(rate))
		})
	}
}

func TestDiscount_UsageLimit(t *testing.T) {
	limit := 2

	t.Run("below limit", func(t *testing.T) {
		repo := newRepo(&Coupon{Code: "CAPPED", DiscountRate: d("0.15"), UsageLimit: &limit, UsedCount: 1})
		rate, err := newTestService(repo).Discount(context.Background(), "CAPPED")
		require.NoError(t, err)
		assert.True(t, d("0.15").Equal(rate))
	})

	t.Run("at limit", func(t *testing.T) {
		repo := newRepo(&Coupon{Code: "CAPPED", DiscountRate: d("0.15"), UsageLimit: &limit, UsedCount: 2})
		_, err := newTestService(repo).Discount(context.Background(), "CAPPED")
		require.ErrorIs(t, err, ErrUsageLimitReached)
	})

	t.Run("zero limit is immediately exhausted", func(t *testing.T) {
		zero := 0
		repo := newRepo(&Coupon{Code: "NEVER", DiscountRate: d("0.15"), UsageLimit: &zero})
		_, err := newTestService(repo).Discount(context.Background(), "NEVER")
		require.ErrorIs(t, err, ErrUsageLimitReached)
	})

	t.Run("nil limit is unlimited", func(t *testing.T) {
		repo := newRepo(&Coupon{Code: "OPEN", DiscountRate: d("0.15"), UsedCount: 1_000_000})
		rate, err := newTestService(repo).Discount(context.Background(), "OPEN")
		require.NoError(t, err)
		assert.True(t, d("0.15").Equal(rate))
	})
}

func TestDiscount_IsReadOnly(t *testing.T) {
	repo := newRepo(&Coupon{Code: "SAVE10", DiscountRate: d("0.10")})
	svc := newTestService(repo)

	_, err := svc.Discount(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Empty(t, repo.increments)
	assert.Equal(t, 0, repo.byCode["SAVE10"].UsedCount)
}

// --- RecordUsage ---

func TestRecordUsage(t *testing.T) {
	repo := newRepo(&Coupon{Code: "SAVE10", DiscountRate: d("0.10")})
	svc := newTestService(repo)

	require.NoError(t, svc.RecordUsage(context.Background(), "SAVE10"))
	assert.Equal(t, 1, repo.byCode["SAVE10"].UsedCount)
}

func TestRecordUsage_VanishedCouponIsNoOp(t *testing.T) {
	repo := newRepo()
	svc := newTestService(repo)

	// The store-side increment affects zero rows for a missing code; no error
	// must surface.
	require.NoError(t, svc.RecordUsage(context.Background(), "GONE"))
}

// --- List ---

func TestList(t *testing.T) {
	repo := newRepo(
		&Coupon{Code: "A", DiscountRate: d("0.10")},
		&Coupon{Code: "B", DiscountRate: d("0.20"), UsedCount: 3},
	)
	svc := newTestService(repo)

	coupons, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, coupons, 2)
}

func TestDiscount_RepoErrorIsWrapped(t *testing.T) {
	repo := &mockCouponRepo{findErr: errors.New("db down")}
	svc := newTestService(repo)

	_, err := svc.Discount(context.Background(), "ANY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownCoupon)
	assert.Contains(t, err.Error(), "db down")
}
