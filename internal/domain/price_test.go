package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cents(v int64) *int64 { return &v }

// ============================================================================
// EvaluateDrop Tests
// ============================================================================

func TestEvaluateDrop_NoPriorPrice(t *testing.T) {
	res := EvaluateDrop(nil, 4999)
	assert.False(t, res.IsDrop)
	assert.Equal(t, 0.0, res.PctChange)
}

func TestEvaluateDrop_Decrease(t *testing.T) {
	res := EvaluateDrop(cents(10000), 8000)
	assert.True(t, res.IsDrop)
	assert.Equal(t, 20.0, res.PctChange)
}

func TestEvaluateDrop_DecreaseRoundsToTwoDecimals(t *testing.T) {
	// (10000-8999)/10000*100 = 10.01
	res := EvaluateDrop(cents(10000), 8999)
	assert.True(t, res.IsDrop)
	assert.Equal(t, 10.01, res.PctChange)

	// (30000-20000)/30000*100 = 33.333... → 33.33
	res = EvaluateDrop(cents(30000), 20000)
	assert.True(t, res.IsDrop)
	assert.Equal(t, 33.33, res.PctChange)
}

func TestEvaluateDrop_RoundsHalfUp(t *testing.T) {
	// (80000-75996)/80000*100 = 5.005 → 5.01
	res := EvaluateDrop(cents(80000), 75996)
	assert.True(t, res.IsDrop)
	assert.Equal(t, 5.01, res.PctChange)
}

func TestEvaluateDrop_Increase(t *testing.T) {
	res := EvaluateDrop(cents(8000), 10000)
	assert.False(t, res.IsDrop)
	assert.Equal(t, -25.0, res.PctChange)
}

func TestEvaluateDrop_Unchanged(t *testing.T) {
	res := EvaluateDrop(cents(5000), 5000)
	assert.False(t, res.IsDrop)
	assert.Equal(t, 0.0, res.PctChange)
}

func TestEvaluateDrop_ZeroOldPrice(t *testing.T) {
	res := EvaluateDrop(cents(0), 5000)
	assert.False(t, res.IsDrop)
	assert.Equal(t, 0.0, res.PctChange)
}

// ============================================================================
// WishlistItem helpers
// ============================================================================

func TestTrackable(t *testing.T) {
	url := "https://shop.example/product/42"
	empty := ""

	assert.True(t, (&WishlistItem{SourceURL: &url}).Trackable())
	assert.False(t, (&WishlistItem{SourceURL: nil}).Trackable())
	assert.False(t, (&WishlistItem{SourceURL: &empty}).Trackable())
}

func TestUnderTarget(t *testing.T) {
	item := &WishlistItem{
		AlertEnabled:      true,
		AlertTargetCents:  cents(5000),
		CurrentPriceCents: cents(4500),
	}
	assert.True(t, item.UnderTarget())

	item.CurrentPriceCents = cents(5000)
	assert.True(t, item.UnderTarget(), "price equal to target counts as under target")

	item.CurrentPriceCents = cents(5001)
	assert.False(t, item.UnderTarget())

	item.AlertEnabled = false
	item.CurrentPriceCents = cents(4500)
	assert.False(t, item.UnderTarget())

	item.AlertEnabled = true
	item.AlertTargetCents = nil
	assert.False(t, item.UnderTarget())
}
