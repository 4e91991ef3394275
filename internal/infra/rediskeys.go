package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных ноды в Redis
	RedisNamespace = "rustchain"
)

// Ключи кэша
const (
	RedisKeyFirstAttestPrefix = RedisNamespace + ":miners:first_attest:"
)

// Ключи координации
const (
	// Блокировка прогрева: кэш греет только один инстанс
	RedisKeyFirstAttestWarmupLock = RedisNamespace + ":locks:first_attest_warmup"
)

// FirstAttestKey Ключ кэша первой аттестации майнера
func FirstAttestKey(miner string) string {
	return fmt.Sprintf("%s%s", RedisKeyFirstAttestPrefix, miner)
}
