package expiration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/internal/testutil/memrepo"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// blockingRunner un TxRunner que avisa al entrar y se queda bloqueado hasta que
// el test lo libere: simula una corrida del job en vuelo.
type blockingRunner struct {
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRunner) Run(_ context.Context, _ func(
	repository.IngredientRepository,
	repository.BatchRepository,
	repository.SpoilageRepository,
	repository.StockInRepository,
) error) error {
	r.entered <- struct{}{}
	<-r.release
	return nil
}

func TestScheduler_TryRunOmiteCorridasSolapadas(t *testing.T) {
	runner := &blockingRunner{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	uc := expiration.NewUseCase(runner, logger.Nop())
	s := expiration.NewScheduler(uc, expiration.SchedulerConfig{
		StartupDelay: time.Hour, // los timers no deben disparar durante el test
		Interval:     time.Hour,
	}, logger.Nop())

	first := make(chan bool)
	go func() {
		first <- s.TryRun(context.Background(), "test-primera")
	}()

	// Esperar a que la primera corrida esté en vuelo
	select {
	case <-runner.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("la primera corrida nunca arrancó")
	}

	// Con el slot tomado, un segundo disparo se omite sin bloquear
	assert.False(t, s.TryRun(context.Background(), "test-segunda"),
		"el disparo solapado debe omitirse")

	close(runner.release)
	require.True(t, <-first, "la primera corrida debe completar con el slot")

	// Liberado el slot, el siguiente disparo vuelve a entrar
	go func() { <-runner.entered }()
	assert.True(t, s.TryRun(context.Background(), "test-tercera"))
}

func TestScheduler_StartStopTerminaLimpio(t *testing.T) {
	store := memrepo.NewStore()
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())
	s := expiration.NewScheduler(uc, expiration.SchedulerConfig{
		StartupDelay: time.Hour,
		Interval:     time.Hour,
		DailyAt:      "02:30",
	}, logger.Nop())

	s.Start(context.Background())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop no terminó: alguna goroutine quedó colgada")
	}
}

func TestScheduler_CorridaInicialTrasElDelay(t *testing.T) {
	runner := &blockingRunner{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	close(runner.release) // corridas instantáneas
	uc := expiration.NewUseCase(runner, logger.Nop())
	s := expiration.NewScheduler(uc, expiration.SchedulerConfig{
		StartupDelay: 10 * time.Millisecond,
		Interval:     time.Hour,
	}, logger.Nop())

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-runner.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("la corrida de arranque no se disparó")
	}
}
