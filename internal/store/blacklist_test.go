package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistPermanent(t *testing.T) {
	bl := NewBlacklist(24 * time.Hour)

	assert.False(t, bl.Banned("MintA", ""))

	bl.AddMint("MintA")
	bl.AddDev("DevX")

	assert.True(t, bl.Banned("MintA", ""))
	assert.True(t, bl.Banned("MintB", "DevX"), "dev ban disqualifies any mint by that dev")
	assert.False(t, bl.Banned("MintB", "DevY"))

	// Empty identifiers never ban.
	bl.AddMint("")
	bl.AddDev("")
	assert.False(t, bl.Banned("", ""))
}

func TestRecentlyRuggedWindow(t *testing.T) {
	bl := NewBlacklist(time.Hour)
	base := time.Now()
	bl.now = func() time.Time { return base }

	bl.AddDev("DevX")
	assert.True(t, bl.RecentlyRugged("DevX"))

	bl.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.False(t, bl.RecentlyRugged("DevX"), "rug marker expires")
	assert.True(t, bl.Banned("", "DevX"), "permanent ban does not expire")
}
