package chain

import (
	"time"

	"github.com/xela07ax/rustchain-node-api/internal/infra"
)

// Params — константы сети: генезис, длина слота, слотов в эпохе, награда и денежная единица.
type Params struct {
	GenesisTimestamp int64
	BlockTime        time.Duration
	EpochSlots       int64
	PerEpochRTC      float64
	Unit             int64
}

func ParamsFromConfig(cfg infra.ChainConfig) Params {
	return Params{
		GenesisTimestamp: cfg.GenesisTimestamp,
		BlockTime:        cfg.BlockTime,
		EpochSlots:       cfg.EpochSlots,
		PerEpochRTC:      cfg.PerEpochRTC,
		Unit:             cfg.Unit,
	}
}

// Clock — источник текущего времени, подменяется в тестах.
type Clock func() time.Time

// CurrentSlot считает слот от генезиса. До генезиса — нулевой слот.
func (p Params) CurrentSlot(now time.Time) int64 {
	blockSec := int64(p.BlockTime / time.Second)
	if blockSec <= 0 {
		return 0
	}
	elapsed := now.Unix() - p.GenesisTimestamp
	if elapsed < 0 {
		return 0
	}
	return elapsed / blockSec
}

func (p Params) SlotToEpoch(slot int64) int64 {
	if p.EpochSlots <= 0 {
		return 0
	}
	return slot / p.EpochSlots
}

// ToDisplay переводит сумму в минимальных единицах в RTC.
func (p Params) ToDisplay(amount int64) float64 {
	return float64(amount) / float64(p.Unit)
}
