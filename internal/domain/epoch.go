package domain

// EpochInfo — публичная часть /epoch.
type EpochInfo struct {
	Epoch          int64 `json:"epoch"`
	Slot           int64 `json:"slot"`
	BlocksPerEpoch int64 `json:"blocks_per_epoch"`
}

// EpochDetails добавляет финансовые данные эпохи (только для админа).
type EpochDetails struct {
	EpochInfo
	EpochPot       float64 `json:"epoch_pot"`
	EnrolledMiners int64   `json:"enrolled_miners"`
}
