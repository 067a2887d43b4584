package ibgw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tvpower/seekingQuant/broker"
)

func TestShareQuantity_WholeShares(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  float64
		price   float64
		want    float64
		wantErr error
	}{
		{"floors", 100, 33.34, 2, nil},
		{"exact", 100, 25, 4, nil},
		{"single share", 100, 100, 1, nil},
		{"just under one", 100, 100.01, 0, broker.ErrQuantityTooSmall},
		{"way under one", 100, 500, 0, broker.ErrQuantityTooSmall},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := shareQuantity(tt.amount, tt.price, false)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShareQuantity_Fractional(t *testing.T) {
	t.Parallel()

	got, err := shareQuantity(100, 33.34, true)
	assert.NoError(t, err)
	assert.InDelta(t, 2.9994, got, 1e-9)

	got, err = shareQuantity(10, 300, true)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0333, got, 1e-9)

	_, err = shareQuantity(0.001, 1000, true)
	assert.ErrorIs(t, err, broker.ErrQuantityTooSmall)
}

func TestShareQuantity_BadPrice(t *testing.T) {
	t.Parallel()

	_, err := shareQuantity(100, 0, false)
	assert.Error(t, err)
	_, err = shareQuantity(100, -5, true)
	assert.Error(t, err)
}

func TestLimitThrough(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 102.0, limitThrough(100, broker.Buy))
	assert.Equal(t, 98.0, limitThrough(100, broker.Sell))
	assert.Equal(t, 34.01, limitThrough(33.34, broker.Buy))
	assert.Equal(t, 32.67, limitThrough(33.34, broker.Sell))
}

func TestBenignCode(t *testing.T) {
	t.Parallel()

	for _, code := range []int{2103, 2104, 2105, 2106, 2107, 2108, 2158} {
		assert.True(t, benignCode(code), "code %d", code)
	}
	for _, code := range []int{200, 202, 354, 2102, 2109} {
		assert.False(t, benignCode(code), "code %d", code)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 7497, cfg.Port)
	assert.NotZero(t, cfg.QuoteTimeout)
	assert.NotZero(t, cfg.OrderAckTimeout)
	assert.Equal(t, "ws://127.0.0.1:7497/ws?client_id=0", cfg.endpoint())
}

func TestConfig_URLOverride(t *testing.T) {
	t.Parallel()

	cfg := Config{URL: "ws://10.0.0.5:4002/ws"}.withDefaults()
	assert.Equal(t, "ws://10.0.0.5:4002/ws", cfg.endpoint())
}
