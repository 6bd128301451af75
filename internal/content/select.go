package content

import (
	"context"
	"time"

	"github.com/ktnyt/fae-sub001/internal/debug"
)

// SelectBackend probes for rg then ag, falling back to the native backend
// if neither is available. The choice is made once, at construction, and
// logged once (spec.md §4.4: "Probe tools once; do not probe repeatedly").
func SelectBackend(opts NativeOptions, log *debug.Logger) Backend {
	if log == nil {
		log = debug.New("[content] ", false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rg := NewRipgrepBackend(log)
	if rg.(probeBackend).Probe(ctx) {
		log.Infof("content: selected ripgrep backend")
		return rg
	}

	ag := NewAgBackend(log)
	if ag.(probeBackend).Probe(ctx) {
		log.Infof("content: selected ag backend")
		return ag
	}

	log.Infof("content: neither rg nor ag found, falling back to native backend")
	return NewNativeBackend(opts, log)
}
