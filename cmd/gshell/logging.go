package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// SlogManager is a [slog.Handler] fanning records out to a set of named
// handlers, each filtering by its own level.
type SlogManager struct {
	sync.RWMutex
	handlers map[string]slog.Handler
	attrs    []slog.Attr
	groups   []string
}

func NewSlogManager() *SlogManager {
	return &SlogManager{
		handlers: make(map[string]slog.Handler),
	}
}

func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	var errs []error

	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	newAttrs := make([]slog.Attr, 0, len(m.attrs)+len(attrs))
	newAttrs = append(newAttrs, m.attrs...)
	newAttrs = append(newAttrs, attrs...)

	newLm := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    newAttrs,
		groups:   append([]string(nil), m.groups...),
	}

	for name, h := range m.handlers {
		newLm.handlers[name] = h.WithAttrs(attrs)
	}

	return newLm
}

func (m *SlogManager) WithGroup(name string) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	newLm := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append([]slog.Attr(nil), m.attrs...),
		groups:   append(append([]string(nil), m.groups...), name),
	}

	for handlerName, h := range m.handlers {
		newLm.handlers[handlerName] = h.WithGroup(name)
	}

	return newLm
}

// AddHandler adds or replaces the handler under name. Attributes and groups
// already applied to the manager are applied to it as well.
func (m *SlogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	h := handler
	if len(m.attrs) > 0 {
		h = h.WithAttrs(m.attrs)
	}

	for _, group := range m.groups {
		h = h.WithGroup(group)
	}

	m.handlers[name] = h
}

func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}
