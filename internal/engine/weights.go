package engine

import (
	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/infra"
)

// HardwareWeights накладывает записи из конфига поверх встроенной таблицы.
func HardwareWeights(entries []infra.WeightEntry) domain.HardwareWeights {
	w := domain.DefaultHardwareWeights()
	for _, e := range entries {
		if e.Family == "" {
			continue
		}
		arch := e.Arch
		if arch == "" {
			arch = domain.DefaultArchKey
		}
		w = w.With(e.Family, arch, e.Multiplier)
	}
	return w
}
