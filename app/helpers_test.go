package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gomical/domain"
	"gomical/infra/memory"
	"gomical/pkg/events"
	"gomical/pkg/httperror"
	"gomical/pkg/schedule"
)

// spyPublisher records published events so tests can assert on the broker
// traffic without a running RabbitMQ.
type spyPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *spyPublisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *spyPublisher) Close() error {
	return nil
}

func (p *spyPublisher) published() []*events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*events.Event, len(p.events))
	copy(out, p.events)
	return out
}

type spyArchiver struct {
	mu   sync.Mutex
	keys []string
	data [][]byte
	err  error
}

func (a *spyArchiver) Save(key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	a.data = append(a.data, data)
	return nil
}

func requireHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()

	var he *httperror.Error
	require.ErrorAs(t, err, &he)
	require.Equal(t, status, he.Status)
}

func mustCreate(t *testing.T, repo *memory.Repository, name string, days []string, method string, typeNames ...string) domain.Category {
	t.Helper()

	encoded, err := schedule.Encode(days)
	require.NoError(t, err)

	cat, err := repo.CreateCategory(context.Background(), domain.Category{
		Name:        name,
		Days:        encoded,
		Method:      method,
		SpecialDays: "[]",
	}, typeNames)
	require.NoError(t, err)
	return cat
}
