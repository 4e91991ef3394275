package audit

/*
Журнал доступа к закрытым полям API.

- Log не блокирует обработчик: событие кладется в буферизованный канал,
  при переполнении сбрасывается с записью в лог (Load Shedding).
- Воркер копит пачку и пишет ее одним INSERT по размеру или по таймеру.
- Stop закрывает канал и ждет финальный flush. Отправка и close разведены RWMutex:
  Log после Stop только пишет предупреждение.
*/

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const batchSize = 100

// StorageInterface определяет, куда физически сохраняются события
type StorageInterface interface {
	WriteBatch(ctx context.Context, events []AccessEvent) error
}

type Auditor interface {
	Log(event AccessEvent)
}

type Journal struct {
	ch       chan AccessEvent
	repo     StorageInterface
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup

	mu     sync.RWMutex // RLock на отправку, Lock на close
	closed bool
}

func NewJournal(repo StorageInterface, bufferSize int, flushInterval time.Duration, logger *zap.Logger) *Journal {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Journal{
		ch:       make(chan AccessEvent, bufferSize),
		repo:     repo,
		interval: flushInterval,
		logger:   logger.With(zap.String("mod", "access-journal")),
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (j *Journal) Stop() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	j.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(j.ch)
	j.mu.Unlock()

	j.wg.Wait()
	j.logger.Info("journal stopped gracefully")
}

func (j *Journal) Log(event AccessEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Отправка неблокирующая, так что RLock держится недолго и Stop не ждет воркера
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		j.logger.Warn("access event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case j.ch <- event:
	default:
		j.logger.Error("access_journal_overflow",
			zap.String("endpoint", event.Endpoint),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]AccessEvent, 0, batchSize)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: контекст запроса к этому моменту уже закрыт
		if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("journal flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				flush()
				j.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Nop — журнал-заглушка, когда запись доступа не нужна (тесты, dev).
type Nop struct{}

func (Nop) Log(AccessEvent) {}
