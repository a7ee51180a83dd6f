package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolumeSpike(t *testing.T) {
	cases := []struct {
		name  string
		stats PoolStats
		want  bool
	}{
		{"short window doubles the average", PoolStats{Volume1h: 100, Volume6h: 600}, true},
		{"short window merely matches", PoolStats{Volume1h: 50, Volume6h: 600}, false},
		{"no long-window history, active pool", PoolStats{Volume1h: 5, Volume6h: 0}, true},
		{"dead pool", PoolStats{Volume1h: 0, Volume6h: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.stats.VolumeSpike())
		})
	}
}
