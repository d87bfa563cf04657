package usecase

import (
	"context"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and *redis.Client wrappers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	deps map[string]Pinger
}

// NewHealthUsecase checks each named dependency; nil entries are skipped.
func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, dep := range u.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
