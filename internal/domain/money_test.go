package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	testCases := []struct {
		amount   string
		expected int64
	}{
		{"50000", 5000000},
		{"0.01", 1},
		{"1234.56", 123456},
		{"19.99", 1999},
		{"0.005", 1},
		{"2.675", 268},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToMinorUnits(decimal.RequireFromString(tc.amount)))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(5000000).Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "1234.56", FromMinorUnits(123456).StringFixed(2))
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	check := func(cents int64) {
		amount := decimal.New(cents, -2)
		minor := ToMinorUnits(amount)
		if minor != cents {
			t.Fatalf("ToMinorUnits(%s) = %d, want %d", amount, minor, cents)
		}
		if back := FromMinorUnits(minor); !back.Equal(amount) {
			t.Fatalf("FromMinorUnits(ToMinorUnits(%s)) = %s", amount, back)
		}
	}

	for cents := int64(1); cents <= 100000; cents++ {
		check(cents)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		check(1 + rng.Int63n(1_000_000_000_000_000))
	}
}

func FuzzMinorUnitsRoundTrip(f *testing.F) {
	for _, seed := range []int64{1, 99, 100, 12345, 5000000, 999999999999} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, cents int64) {
		if cents <= 0 || cents > 1_000_000_000_000_000 {
			t.Skip()
		}
		amount := decimal.New(cents, -2)
		if !HasAtMostTwoDecimals(amount) {
			t.Fatalf("%s reported as more than two decimals", amount)
		}
		if back := FromMinorUnits(ToMinorUnits(amount)); !back.Equal(amount) {
			t.Fatalf("round trip of %s gave %s", amount, back)
		}
	})
}

func TestHasAtMostTwoDecimals(t *testing.T) {
	assert.True(t, HasAtMostTwoDecimals(decimal.RequireFromString("10")))
	assert.True(t, HasAtMostTwoDecimals(decimal.RequireFromString("10.5")))
	assert.True(t, HasAtMostTwoDecimals(decimal.RequireFromString("10.25")))
	assert.False(t, HasAtMostTwoDecimals(decimal.RequireFromString("10.255")))
}

func TestFeeDefinition_IsPayable(t *testing.T) {
	fee := FeeDefinition{Status: FeeStatusActive, Amount: decimal.NewFromInt(100)}
	assert.True(t, fee.IsPayable())

	fee.Status = FeeStatusInactive
	assert.False(t, fee.IsPayable())

	fee.Status = FeeStatusActive
	fee.Amount = decimal.Zero
	assert.False(t, fee.IsPayable())
}

func TestFeeStatusEntry_IsPaidNilSafe(t *testing.T) {
	var entry *FeeStatusEntry
	assert.False(t, entry.IsPaid())
	assert.True(t, (&FeeStatusEntry{Status: FeePaid}).IsPaid())
}
