package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ghostauth/internal/repository"
)

// GhostReaper borra periodicamente los registros fantasma sin confirmar mas
// viejos que maxAge. Politica operacional: sin ella la tabla crece sin
// limite porque nada mas borra fantasmas.
type GhostReaper struct {
	logger *zap.Logger
	ghosts repository.GhostRepository
	maxAge time.Duration
	every  time.Duration
}

func NewGhostReaper(logger *zap.Logger, ghosts repository.GhostRepository, maxAge, every time.Duration) *GhostReaper {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	if every <= 0 {
		every = time.Hour
	}
	return &GhostReaper{
		logger: logger,
		ghosts: ghosts,
		maxAge: maxAge,
		every:  every,
	}
}

// Run bloquea hasta que ctx se cancela.
func (r *GhostReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *GhostReaper) reap(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.maxAge)
	deleted, err := r.ghosts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.logger.Warn("ghost reap failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		r.logger.Info("ghost reap", zap.Int64("deleted", deleted))
	}
}
