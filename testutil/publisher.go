package testutil

import (
	"context"
	"sync"

	"asset_borrow_tracker/notify"
)

type Published struct {
	Topic string
	Event notify.Event
}

// Recorder 记录收到的所有事件
type Recorder struct {
	mu  sync.Mutex
	all []Published
	Err error
}

func (r *Recorder) Publish(_ context.Context, topic string, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, Published{Topic: topic, Event: ev})
	return r.Err
}

func (r *Recorder) All() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.all...)
}

func (r *Recorder) On(topic string) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, p := range r.all {
		if p.Topic == topic {
			out = append(out, p.Event)
		}
	}
	return out
}
