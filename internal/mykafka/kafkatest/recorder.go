// Package kafkatest records published events in memory.
package kafkatest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/canteen/internal/mykafka"
)

type Published struct {
	Topic string
	Key   string
	Event mykafka.Event
}

type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, _ := event.(mykafka.Event)
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: ev})
	return r.Err
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, p := range r.events {
		out = append(out, p.Event.Type)
	}
	return out
}

func (r *Recorder) All() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

var _ mykafka.Publisher = (*Recorder)(nil)
