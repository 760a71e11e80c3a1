package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icexin/gocraft-quests/proto"
)

func TestOfflinePlayerIDStable(t *testing.T) {
	assert.Equal(t, OfflinePlayerID("steve"), OfflinePlayerID("steve"))
	assert.NotEqual(t, OfflinePlayerID("steve"), OfflinePlayerID("alex"))
	assert.Equal(t, 3, int(OfflinePlayerID("steve").Version()))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.DiamondsRequired = 0
	assert.ErrorIs(t, cfg.Validate(), ErrDiamondsRequired)

	cfg = DefaultConfig()
	cfg.RewardXP = -1
	assert.ErrorIs(t, cfg.Validate(), ErrRewardXP)

	cfg = DefaultConfig()
	cfg.Qualifying = NewBlockSet()
	assert.ErrorIs(t, cfg.Validate(), ErrNoQualifying)

	cfg = DefaultConfig()
	cfg.RewardXP = 0
	assert.NoError(t, cfg.Validate())
}

func TestDiamondOres(t *testing.T) {
	ores := DiamondOres()
	assert.Equal(t, 2, ores.Len())
	assert.True(t, ores.Contains(proto.BlockDiamondOre))
	assert.True(t, ores.Contains(proto.BlockDeepslateDiamondOre))
	assert.False(t, ores.Contains(proto.BlockDeepslate))
	assert.False(t, ores.Contains(proto.BlockAir))
}
