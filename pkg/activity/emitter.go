package activity

import "context"

// Config toggles emission and sets the default channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter sends events to a set of hooks when enabled.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. An emitter without hooks is always disabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit will forward events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit forwards evt, filling in the configured channel when it is blank.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
