package sendprefs

import "context"

// Prefs captures per-caller send preferences.
type Prefs struct {
	// TranscriptVisible reports whether the caller already renders the
	// session transcript, which lets auto echo modes stay quiet.
	TranscriptVisible bool
	DisableEchoInput  bool
	DisableEchoOutput bool
}

type prefsKey struct{}

// New returns a new Prefs instance with defaults applied.
func New() *Prefs {
	return &Prefs{}
}

// WithContext stores prefs in the context.
func WithContext(ctx context.Context, prefs *Prefs) context.Context {
	if ctx == nil || prefs == nil {
		return ctx
	}
	return context.WithValue(ctx, prefsKey{}, prefs)
}

// FromContext returns the prefs stored in the context, if any.
func FromContext(ctx context.Context) *Prefs {
	if ctx == nil {
		return nil
	}
	if value := ctx.Value(prefsKey{}); value != nil {
		if prefs, ok := value.(*Prefs); ok {
			return prefs
		}
	}
	return nil
}
