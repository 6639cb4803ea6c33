package chart

import "sync"

// Snapshot is what a browser needs to mirror a canvas. Version changes on
// every create, so a client destroys and recreates its chart when the version
// moves and updates in place otherwise.
type Snapshot struct {
	Version  uint64  `json:"version"`
	Revision uint64  `json:"revision"`
	Present  bool    `json:"present"`
	Config   *Config `json:"config,omitempty"`
}

// Canvas is a server side Surface holding the latest configuration of one
// chart for polling clients.
type Canvas struct {
	mu       sync.RWMutex
	cfg      *Config
	version  uint64
	revision uint64
}

func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) Create(cfg Config) Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.revision++
	c.cfg = &cfg
	return &canvasInstance{canvas: c, version: c.version}
}

// Snapshot returns a copy of the canvas state.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{Version: c.version, Revision: c.revision, Present: c.cfg != nil}
	if c.cfg != nil {
		cfg := *c.cfg
		s.Config = &cfg
	}
	return s
}

type canvasInstance struct {
	canvas  *Canvas
	version uint64
}

func (i *canvasInstance) Update(cfg Config) {
	c := i.canvas
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != i.version {
		return
	}
	c.revision++
	c.cfg = &cfg
}

func (i *canvasInstance) Destroy() {
	c := i.canvas
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != i.version || c.cfg == nil {
		return
	}
	c.revision++
	c.cfg = nil
}
