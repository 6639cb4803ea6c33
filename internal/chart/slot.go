package chart

import "sync"

// Surface is where chart instances are drawn.
type Surface interface {
	Create(cfg Config) Instance
}

// Instance is one live chart on a surface.
type Instance interface {
	Update(cfg Config)
	Destroy()
}

// Builder produces a configuration for a palette.
type Builder func(Palette) Config

// Slot owns at most one chart instance. A slot without a surface ignores
// every call.
type Slot struct {
	mu       sync.Mutex
	surface  Surface
	instance Instance
	build    Builder
}

func NewSlot(surface Surface) *Slot {
	return &Slot{surface: surface}
}

// Render destroys the current instance, if any, and creates a new one.
func (s *Slot) Render(build Builder, p Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil || build == nil {
		return
	}
	if s.instance != nil {
		s.instance.Destroy()
		s.instance = nil
	}
	s.build = build
	s.instance = s.surface.Create(build(p))
}

// ApplyTheme recolors the current instance in place. No-op when absent.
func (s *Slot) ApplyTheme(p Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instance == nil || s.build == nil {
		return
	}
	s.instance.Update(s.build(p))
}

// Destroy removes the current instance.
func (s *Slot) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instance == nil {
		return
	}
	s.instance.Destroy()
	s.instance = nil
	s.build = nil
}

// Present reports whether the slot holds an instance.
func (s *Slot) Present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance != nil
}
