package policy

// FieldSet — разбиение полей ответа эндпоинта на публичные и закрытые.
// Закрытые поля попадают в ответ только при LevelAdmin.
type FieldSet struct {
	Endpoint   string
	Public     []string
	Restricted []string
}

// Disclosed возвращает закрытые поля, которые уходят в ответ на данном уровне доступа.
// Для анонима — nil.
func (fs FieldSet) Disclosed(level AccessLevel) []string {
	if !level.IsAdmin() || len(fs.Restricted) == 0 {
		return nil
	}
	return append([]string(nil), fs.Restricted...)
}

// Правила видимости по эндпоинтам. Имена полей совпадают с json-тегами в domain.
var (
	MinersFields = FieldSet{
		Endpoint: "miners",
		Public: []string{
			"miner", "last_attest", "device_family", "device_arch",
			"hardware_type", "antiquity_multiplier",
		},
		Restricted: []string{"first_attest", "entropy_score"},
	}

	// Баланс целиком закрыт: анонимный запрос отклоняется до запроса в БД.
	WalletBalanceFields = FieldSet{
		Endpoint:   "wallet_balance",
		Restricted: []string{"miner_id", "amount_i64", "amount_rtc"},
	}

	EpochFields = FieldSet{
		Endpoint:   "epoch",
		Public:     []string{"epoch", "slot", "blocks_per_epoch"},
		Restricted: []string{"epoch_pot", "enrolled_miners"},
	}
)
