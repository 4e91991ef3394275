package domain

// DefaultArchKey — запасная запись внутри семейства.
const DefaultArchKey = "default"

// HardwareWeights — двухуровневая таблица family -> arch -> множитель древности.
// Ключи регистрозависимые, совпадают с тем, что присылает майнер.
type HardwareWeights map[string]map[string]float64

// Multiplier ищет в порядке: точная пара (family, arch) -> default семейства -> 1.0.
func (w HardwareWeights) Multiplier(family, arch string) float64 {
	archs, ok := w[family]
	if !ok {
		return 1.0
	}
	if m, ok := archs[arch]; ok {
		return m
	}
	if m, ok := archs[DefaultArchKey]; ok {
		return m
	}
	return 1.0
}

// With возвращает копию таблицы с переопределенной парой (family, arch).
func (w HardwareWeights) With(family, arch string, multiplier float64) HardwareWeights {
	out := make(HardwareWeights, len(w)+1)
	for fam, archs := range w {
		cp := make(map[string]float64, len(archs))
		for k, v := range archs {
			cp[k] = v
		}
		out[fam] = cp
	}
	if out[family] == nil {
		out[family] = make(map[string]float64)
	}
	out[family][arch] = multiplier
	return out
}

// DefaultHardwareWeights — встроенная таблица множителей.
func DefaultHardwareWeights() HardwareWeights {
	return HardwareWeights{
		"PowerPC": {
			"G3":           1.8,
			"G4":           2.5,
			"G5":           2.0,
			DefaultArchKey: 1.5,
		},
		"Apple Silicon": {
			"M1":           1.2,
			"M2":           1.2,
			"M3":           1.1,
			DefaultArchKey: 1.2,
		},
		"x86": {
			"retro":        1.4,
			"core2":        1.3,
			"pentium4":     1.5,
			DefaultArchKey: 1.0,
		},
		"x86_64": {
			DefaultArchKey: 1.0,
		},
		"ARM": {
			DefaultArchKey: 1.0,
		},
	}
}
