package domain

// Balance — ответ /wallet/balance. AmountRTC = AmountI64 / UNIT.
type Balance struct {
	MinerID   string  `json:"miner_id"`
	AmountI64 int64   `json:"amount_i64"`
	AmountRTC float64 `json:"amount_rtc"`
}
