package audit

import "time"

// AccessEvent — запись о выдаче закрытых данных или об отказе в доступе.
type AccessEvent struct {
	ID          string    `json:"id"`           // UUID события
	TraceID     string    `json:"trace_id"`     // Сквозной ID запроса
	Endpoint    string    `json:"endpoint"`     // miners, wallet_balance, epoch
	AccessLevel string    `json:"access_level"` // admin / anonymous
	RemoteAddr  string    `json:"remote_addr"`
	Status      int       `json:"status"`    // HTTP статус ответа
	Disclosed   []string  `json:"disclosed"` // Закрытые поля, ушедшие в ответ
	Timestamp   time.Time `json:"timestamp"`
}
