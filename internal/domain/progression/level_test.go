package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, Level(0))
	assert.Equal(t, 1, Level(50))
	assert.Equal(t, 1, Level(99))

	// Level boundaries are exact: 100 XP starts level 2, 400 starts level 3.
	assert.Equal(t, 2, Level(100))
	assert.Equal(t, 2, Level(399))
	assert.Equal(t, 3, Level(400))
	assert.Equal(t, 3, Level(899))
	assert.Equal(t, 4, Level(900))
	assert.Equal(t, 10, Level(8100))
	assert.Equal(t, 11, Level(10000))
}

func TestLevel_NegativeXP(t *testing.T) {
	assert.Equal(t, 1, Level(shared.XP(-5)))
}

func TestXPFloorAndCeiling(t *testing.T) {
	assert.Equal(t, shared.XP(0), XPFloor(1))
	assert.Equal(t, shared.XP(100), XPFloor(2))
	assert.Equal(t, shared.XP(400), XPFloor(3))
	assert.Equal(t, shared.XP(8100), XPFloor(10))

	assert.Equal(t, shared.XP(100), XPCeiling(1))
	assert.Equal(t, shared.XP(400), XPCeiling(2))
	assert.Equal(t, shared.XP(10000), XPCeiling(10))
}

func TestXPFloor_DegenerateLevels(t *testing.T) {
	assert.Equal(t, shared.XP(0), XPFloor(0))
	assert.Equal(t, shared.XP(0), XPFloor(-3))
	assert.Equal(t, shared.XP(100), XPCeiling(0))
}

func TestLevelBoundariesRoundTrip(t *testing.T) {
	// Every level's floor must map back to that level, and one XP below it
	// to the level beneath.
	for level := 2; level <= 50; level++ {
		floor := XPFloor(level)
		assert.Equal(t, level, Level(floor), "floor of level %d", level)
		assert.Equal(t, level-1, Level(floor-1), "just below level %d", level)
	}
}

func TestInfoFor(t *testing.T) {
	info := InfoFor(0)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, 0, info.Progress)
	assert.Equal(t, 100, info.Needed)

	info = InfoFor(250)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, 150, info.Progress)
	assert.Equal(t, 300, info.Needed)

	info = InfoFor(400)
	assert.Equal(t, 3, info.Level)
	assert.Equal(t, 0, info.Progress)
	assert.Equal(t, 500, info.Needed)
}
