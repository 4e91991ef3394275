package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/rustchain-node-api/internal/audit"
	"github.com/xela07ax/rustchain-node-api/internal/engine"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
	"go.uber.org/zap"
)

const authRequiredMessage = "Provide X-API-Key header with valid admin key"

type authRequiredResponse struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Deps — общее окружение всех обработчиков API.
type Deps struct {
	Classifier *policy.Classifier
	Metrics    *engine.Metrics
	Journal    audit.Auditor
	Logger     *zap.Logger
}

type base struct {
	Deps
	fields   policy.FieldSet
	endpoint string
}

func newBase(d Deps, fields policy.FieldSet) base {
	endpoint := fields.Endpoint
	if d.Classifier == nil {
		d.Classifier = policy.NewClassifier("")
	}
	if d.Metrics == nil {
		d.Metrics = engine.NewMetrics(nil)
	}
	if d.Journal == nil {
		d.Journal = audit.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	d.Logger = d.Logger.Named("api").With(zap.String("endpoint", endpoint))
	return base{Deps: d, fields: fields, endpoint: endpoint}
}

// classify определяет уровень доступа один раз на запрос и считает трафик.
func (b base) classify(r *http.Request) policy.AccessLevel {
	level := b.Classifier.ClassifyRequest(r)
	b.Metrics.Requests.WithLabelValues(b.endpoint, string(level)).Inc()
	return level
}

// record пишет в журнал выдачу закрытых данных админу и отказы в доступе.
func (b base) record(r *http.Request, level policy.AccessLevel, status int) {
	if !level.IsAdmin() && status != http.StatusUnauthorized {
		return
	}
	var disclosed []string
	if status == http.StatusOK {
		disclosed = b.fields.Disclosed(level)
	}
	b.Journal.Log(audit.AccessEvent{
		ID:          uuid.NewString(),
		TraceID:     engine.TraceID(r.Context()),
		Endpoint:    b.endpoint,
		AccessLevel: string(level),
		RemoteAddr:  r.RemoteAddr,
		Status:      status,
		Disclosed:   disclosed,
		Timestamp:   time.Now(),
	})
}

func (b base) unauthorized(w http.ResponseWriter, r *http.Request, level policy.AccessLevel) {
	b.Metrics.AuthFailures.WithLabelValues(b.endpoint).Inc()
	writeJSON(w, http.StatusUnauthorized, authRequiredResponse{
		OK:      false,
		Reason:  "authentication_required",
		Message: authRequiredMessage,
	})
	b.record(r, level, http.StatusUnauthorized)
}

func (b base) internalError(w http.ResponseWriter, r *http.Request, level policy.AccessLevel, err error) {
	b.Logger.Error("request failed",
		zap.String("trace_id", engine.TraceID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	b.record(r, level, http.StatusInternalServerError)
}

// writeJSON пишет тело без завершающего перевода строки.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"ok":false,"error":"internal_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
