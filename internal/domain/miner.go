package domain

// Attestation — строка из miner_attest_recent. Поля устройства могут быть не заданы.
type Attestation struct {
	Miner        string
	TsOK         int64
	DeviceFamily *string
	DeviceArch   *string
	EntropyScore *float64
}

// MinerInfo — публичное представление майнера для /api/miners.
type MinerInfo struct {
	Miner               string  `json:"miner"`
	LastAttest          int64   `json:"last_attest"`
	DeviceFamily        *string `json:"device_family"`
	DeviceArch          *string `json:"device_arch"`
	HardwareType        string  `json:"hardware_type"`
	AntiquityMultiplier float64 `json:"antiquity_multiplier"`
}

// MinerDetails — то же плюс закрытые поля (только для админа).
type MinerDetails struct {
	MinerInfo
	FirstAttest  *int64  `json:"first_attest"` // null, если истории нет или запрос упал
	EntropyScore float64 `json:"entropy_score"`
}

// NewMinerInfo собирает публичные поля: тип железа и множитель вычисляются из family/arch.
func NewMinerInfo(a Attestation, weights HardwareWeights) MinerInfo {
	return MinerInfo{
		Miner:               a.Miner,
		LastAttest:          a.TsOK,
		DeviceFamily:        a.DeviceFamily,
		DeviceArch:          a.DeviceArch,
		HardwareType:        ClassifyHardware(a.DeviceFamily, a.DeviceArch),
		AntiquityMultiplier: weights.Multiplier(orUnknown(a.DeviceFamily), orUnknown(a.DeviceArch)),
	}
}

// Entropy возвращает entropy_score, NULL трактуется как 0.0.
func (a Attestation) Entropy() float64 {
	if a.EntropyScore == nil {
		return 0.0
	}
	return *a.EntropyScore
}
