package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a host callback run at one point of the application lifecycle.
type Hook func(ctx context.Context) error

type phase string

const (
	phaseStart phase = "start"
	phaseReady phase = "ready"
	phaseStop  phase = "stop"
)

// OnStart hooks run once every component, the pipeline included, has
// started. A failing hook aborts startup.
func (a *App) OnStart(hooks ...Hook) { a.addHooks(phaseStart, hooks) }

// OnReady hooks run after the ready check, right before the summary.
func (a *App) OnReady(hooks ...Hook) { a.addHooks(phaseReady, hooks) }

// OnStop hooks run at shutdown before any component is stopped, while the
// pipeline still flows.
func (a *App) OnStop(hooks ...Hook) { a.addHooks(phaseStop, hooks) }

func (a *App) addHooks(p phase, hooks []Hook) {
	if a.hooks == nil {
		a.hooks = make(map[phase][]Hook)
	}
	a.hooks[p] = append(a.hooks[p], hooks...)
}

// runHooks stops at the first failing hook of phase p.
func (a *App) runHooks(ctx context.Context, p phase) error {
	for i, h := range a.hooks[p] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", p, i, err)
		}
	}
	return nil
}
