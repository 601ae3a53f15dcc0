package expiration

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// SchedulerConfig temporización del job de caducados.
type SchedulerConfig struct {
	StartupDelay time.Duration // corrida inicial poco después de arrancar
	Interval     time.Duration // corrida periódica (por defecto cada hora)
	DailyAt      string        // corrida diaria a hora local fija, formato "15:04"
}

// Scheduler dispara el job de caducados: una corrida al poco de arrancar, una
// cada Interval y una diaria a la hora local DailyAt.
//
// El no-solapamiento lo garantiza un guard de slot único (atomic.Bool con
// CompareAndSwap): un disparo que llega con una corrida en vuelo se omite y se
// registra como omitido — no es error ni se encola. Válido porque el job es de
// un solo proceso; un despliegue multi-proceso necesitaría un lock externo.
type Scheduler struct {
	uc  *UseCase
	cfg SchedulerConfig
	log *logger.Logger

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler construye el scheduler. Interval en cero se normaliza a 1 h.
func NewScheduler(uc *UseCase, cfg SchedulerConfig, log *logger.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.StartupDelay <= 0 {
		cfg.StartupDelay = 30 * time.Second
	}
	return &Scheduler{
		uc:   uc,
		cfg:  cfg,
		log:  log,
		stop: make(chan struct{}),
	}
}

// Start lanza los timers en goroutines propias. Llamar una sola vez.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.runLoop(ctx)
	if s.cfg.DailyAt != "" {
		s.wg.Add(1)
		go s.dailyLoop(ctx)
	}
	s.log.Info().
		Dur("interval", s.cfg.Interval).
		Str("daily_at", s.cfg.DailyAt).
		Msg("scheduler de caducados iniciado")
}

// Stop detiene los timers y espera a que terminen las goroutines. La corrida
// en vuelo (si la hay) termina sola.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// TryRun intenta tomar el slot de ejecución y correr el job. Devuelve false si
// había una corrida en vuelo (el disparo se omite). Exportado para que el
// no-solapamiento sea testeable sin timers.
func (s *Scheduler) TryRun(ctx context.Context, trigger string) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn().Str("trigger", trigger).Msg("corrida de caducados omitida: otra en vuelo")
		return false
	}
	defer s.running.Store(false)

	if _, err := s.uc.ProcessExpiredBatches(ctx, entity.SystemActorID); err != nil {
		s.log.Error().Err(err).Str("trigger", trigger).Msg("corrida de caducados falló")
	}
	return true
}

// runLoop corrida inicial diferida + ticker horario.
func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	startup := time.NewTimer(s.cfg.StartupDelay)
	defer startup.Stop()
	select {
	case <-startup.C:
		s.TryRun(ctx, "startup")
	case <-s.stop:
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.TryRun(ctx, "interval")
		case <-s.stop:
			return
		}
	}
}

// dailyLoop corrida diaria a hora local fija.
func (s *Scheduler) dailyLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		next, ok := nextDailyRun(time.Now(), s.cfg.DailyAt)
		if !ok {
			s.log.Error().Str("daily_at", s.cfg.DailyAt).Msg("hora diaria inválida; corrida diaria deshabilitada")
			return
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.TryRun(ctx, "daily")
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// nextDailyRun próximo instante local con la hora hhmm ("15:04") estrictamente
// posterior a now.
func nextDailyRun(now time.Time, hhmm string) (time.Time, bool) {
	at, err := time.ParseInLocation("15:04", hhmm, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, true
}
