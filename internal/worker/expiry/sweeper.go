package expiry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper периодически завершает approved бронирования, время которых истекло.
// Запуски не перекрываются: если предыдущий еще идет, очередной пропускается.
type Sweeper struct {
	cron    *cron.Cron
	job     cron.Job
	expirer Expirer
	timeout time.Duration
	logger  Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper создает планировщик. schedule - выражение cron ("@every 1m", "*/5 * * * *").
// timeout ограничивает один проход, 0 - без ограничения.
func NewSweeper(expirer Expirer, schedule string, timeout time.Duration, logger Logger) (*Sweeper, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Sweeper{
		expirer: expirer,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Первый проход и проходы по расписанию идут через одну обертку, поэтому не перекрываются
	cl := cronLogger{logger: logger}
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.run))
	s.cron = cron.New(cron.WithLogger(cl))

	if _, err := s.cron.AddJob(schedule, s.job); err != nil {
		cancel()
		return nil, fmt.Errorf("expiry: invalid schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start запускает первый проход сразу и затем по расписанию
func (s *Sweeper) Start() {
	s.logger.Info("Sweeper: starting")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()

	s.cron.Start()
}

// Stop останавливает расписание и ждет завершения текущего прохода (в том числе первого) или отмены ctx
func (s *Sweeper) Stop(ctx context.Context) {
	s.logger.Info("Sweeper: stopping")
	stopped := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Sweeper: stop deadline exceeded, cancelling running sweep")
	}
	s.cancel()
	s.logger.Info("Sweeper: stopped")
}

// RunOnce выполняет один проход
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	expired, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		s.logger.Error("Sweeper: sweep finished with errors in %s, expired=%d: %v", time.Since(started), expired, err)
		return expired, err
	}

	if expired > 0 {
		s.logger.Info("Sweeper: expired %d bookings in %s", expired, time.Since(started))
	}
	return expired, nil
}

func (s *Sweeper) run() {
	if s.ctx.Err() != nil {
		return
	}
	_, _ = s.RunOnce(s.ctx)
}

// cronLogger адаптер Logger к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// cron пишет Info на каждый запуск, это шум
	if strings.HasPrefix(msg, "skip") {
		l.logger.Warn("Sweeper: %s %v", msg, keysAndValues)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("Sweeper: %s: %v %v", msg, err, keysAndValues)
}
