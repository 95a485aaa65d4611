// Package lifecycle dispatches the host's packaging events to plugin hooks.
package lifecycle

import (
	"fmt"
	"slices"
	"sync"

	"github.com/picklr-io/slsloop/internal/logging"
)

// Packaging events, in the order the host fires them.
const (
	EventInitialize       = "package:initialize"
	EventCompileFunctions = "package:compileFunctions"
	EventCompileEvents    = "package:compileEvents"
	EventFinalize         = "package:finalize"
)

// PackageEvents lists the packaging events in firing order.
var PackageEvents = []string{
	EventInitialize,
	EventCompileFunctions,
	EventCompileEvents,
	EventFinalize,
}

// Hook is invoked synchronously when its event fires.
type Hook func() error

// Plugin exposes the hooks it wants bound.
type Plugin interface {
	Hooks() map[string]Hook
}

type binding struct {
	plugin string
	hook   Hook
}

// Registry binds plugin hooks to events.
type Registry struct {
	mu      sync.RWMutex
	plugins []string
	hooks   map[string][]binding
}

func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string][]binding),
	}
}

// Register binds every hook of p under the given plugin name.
func (r *Registry) Register(name string, p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing == name {
			return fmt.Errorf("plugin already registered: %s", name)
		}
	}
	r.plugins = append(r.plugins, name)

	for event, hook := range p.Hooks() {
		if hook == nil {
			continue
		}
		r.hooks[event] = append(r.hooks[event], binding{plugin: name, hook: hook})
	}
	return nil
}

// Run fires event, invoking its hooks in registration order. The first
// failing hook aborts the run.
func (r *Registry) Run(event string) error {
	r.mu.RLock()
	bound := append([]binding(nil), r.hooks[event]...)
	r.mu.RUnlock()

	logging.Debug("running lifecycle event", "event", event, "hooks", len(bound))
	for _, b := range bound {
		if err := b.hook(); err != nil {
			return fmt.Errorf("%s hook of plugin %s failed: %w", event, b.plugin, err)
		}
	}
	return nil
}

// RunAll fires events in order, stopping at the first failure.
func (r *Registry) RunAll(events ...string) error {
	for _, event := range events {
		if err := r.Run(event); err != nil {
			return err
		}
	}
	return nil
}

// Events returns the events with at least one bound hook: packaging events
// in firing order, then any others sorted by name.
func (r *Registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []string
	for _, event := range PackageEvents {
		if len(r.hooks[event]) > 0 {
			events = append(events, event)
		}
	}
	var others []string
	for event, bound := range r.hooks {
		if len(bound) > 0 && !isPackageEvent(event) {
			others = append(others, event)
		}
	}
	slices.Sort(others)
	return append(events, others...)
}

func isPackageEvent(event string) bool {
	return slices.Contains(PackageEvents, event)
}
