package promo

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cart() []Item {
	return []Item{
		{Name: "Paneer Feast Kit", Price: dec("450.00"), Quantity: 1},
		{Name: "Dal Tadka Kit", Price: dec("220.00"), Quantity: 2},
	}
}

func TestApply_Percentage(t *testing.T) {
	rule := &Rule{Code: "TEN", DiscountType: DiscountPercentage, Value: dec("10"), Description: "10% off"}

	d, err := Apply(rule, cart())
	require.NoError(t, err)
	// subtotal 890.00 -> 89.00
	assert.True(t, dec("89.00").Equal(d.Amount), "got %s", d.Amount)
}

func TestApply_FixedCappedAtSubtotal(t *testing.T) {
	rule := &Rule{Code: "BIG", DiscountType: DiscountFixed, Value: dec("5000")}

	d, err := Apply(rule, cart())
	require.NoError(t, err)
	assert.True(t, dec("890.00").Equal(d.Amount))
}

func TestApply_FreeLowest(t *testing.T) {
	rule := &Rule{Code: "FREEBIE", DiscountType: DiscountFreeLowest}

	d, err := Apply(rule, cart())
	require.NoError(t, err)
	assert.True(t, dec("220.00").Equal(d.Amount))
}

func TestApply_FreeLowestEmptyCart(t *testing.T) {
	rule := &Rule{Code: "FREEBIE", DiscountType: DiscountFreeLowest}

	d, err := Apply(rule, nil)
	require.NoError(t, err)
	assert.True(t, d.Amount.IsZero())
}

func TestApply_MinItemsNotMet(t *testing.T) {
	rule := &Rule{Code: "BULK", DiscountType: DiscountPercentage, Value: dec("20"), MinItems: 5}

	_, err := Apply(rule, cart())
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestApply_UnsupportedType(t *testing.T) {
	rule := &Rule{Code: "ODD", DiscountType: DiscountType("mystery")}

	_, err := Apply(rule, cart())
	assert.Error(t, err)
}

// --- Validator ---

type mockRepo struct {
	rule       *Rule
	findErr    error
	increments int
	incErr     error
}

func (m *mockRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.rule, nil
}

func (m *mockRepo) IncrementUses(_ context.Context, _ string) error {
	m.increments++
	return m.incErr
}

func fixedValidator(repo *mockRepo, at time.Time) *RepoValidator {
	v := NewRepoValidator(repo)
	v.now = func() time.Time { return at }
	return v
}

func TestValidate_Success(t *testing.T) {
	repo := &mockRepo{rule: &Rule{Code: "TEN", DiscountType: DiscountPercentage, Value: dec("10")}}
	v := fixedValidator(repo, time.Now())

	d, err := v.Validate(context.Background(), "TEN", cart())
	require.NoError(t, err)
	assert.True(t, dec("89.00").Equal(d.Amount))
	assert.Equal(t, 1, repo.increments)
}

func TestValidate_UnknownCode(t *testing.T) {
	repo := &mockRepo{findErr: ErrInvalidCode}
	v := fixedValidator(repo, time.Now())

	_, err := v.Validate(context.Background(), "NOPE", cart())
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestValidate_NotYetValid(t *testing.T) {
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{rule: &Rule{Code: "SOON", DiscountType: DiscountPercentage, Value: dec("10"), ValidFrom: &from}}
	v := fixedValidator(repo, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := v.Validate(context.Background(), "SOON", cart())
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidate_Expired(t *testing.T) {
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{rule: &Rule{Code: "OLD", DiscountType: DiscountPercentage, Value: dec("10"), ValidUntil: &until}}
	v := fixedValidator(repo, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := v.Validate(context.Background(), "OLD", cart())
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidate_UsageLimit(t *testing.T) {
	repo := &mockRepo{rule: &Rule{Code: "MAXED", DiscountType: DiscountPercentage, Value: dec("10"), MaxUses: 3, Uses: 3}}
	v := fixedValidator(repo, time.Now())

	_, err := v.Validate(context.Background(), "MAXED", cart())
	assert.ErrorIs(t, err, ErrUsageLimitReached)
	assert.Zero(t, repo.increments)
}

func TestValidate_IncrementFailure(t *testing.T) {
	repo := &mockRepo{
		rule:   &Rule{Code: "TEN", DiscountType: DiscountPercentage, Value: dec("10")},
		incErr: errors.New("db write failed"),
	}
	v := fixedValidator(repo, time.Now())

	_, err := v.Validate(context.Background(), "TEN", cart())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment promo uses")
}
