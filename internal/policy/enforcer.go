package policy

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// HeaderAPIKey — заголовок, в котором клиент передает админский ключ.
const HeaderAPIKey = "X-API-Key"

// AccessLevel — уровень доступа, вычисляемый один раз на запрос.
type AccessLevel string

const (
	LevelAnonymous AccessLevel = "anonymous"
	LevelAdmin     AccessLevel = "admin"
)

func (l AccessLevel) IsAdmin() bool { return l == LevelAdmin }

var ErrAuthenticationRequired = errors.New("authentication required")

// Classifier сравнивает предъявленный ключ с единственным секретом ноды.
// Секрет задается при старте и дальше только читается.
type Classifier struct {
	secret []byte
}

func NewClassifier(adminKey string) *Classifier {
	return &Classifier{secret: []byte(adminKey)}
}

// Enabled сообщает, настроен ли секрет вообще. Без него админов нет.
func (c *Classifier) Enabled() bool { return len(c.secret) > 0 }

// Classify: admin только если ключ непустой и совпадает с секретом байт в байт.
// Отсутствие ключа — это не ошибка, а анонимный доступ.
func (c *Classifier) Classify(key string) AccessLevel {
	if key == "" || !c.Enabled() {
		return LevelAnonymous
	}
	if subtle.ConstantTimeCompare([]byte(key), c.secret) == 1 {
		return LevelAdmin
	}
	return LevelAnonymous
}

// ClassifyRequest читает X-API-Key и ничего не пишет в запрос.
func (c *Classifier) ClassifyRequest(r *http.Request) AccessLevel {
	return c.Classify(r.Header.Get(HeaderAPIKey))
}

// Require — проверка для эндпоинтов с обязательной авторизацией.
func Require(level AccessLevel) error {
	if !level.IsAdmin() {
		return ErrAuthenticationRequired
	}
	return nil
}
