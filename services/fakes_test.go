package services

import (
	"context"
	"io"
	"sync"

	"foodorder/events"
	"foodorder/imagestore"
	"foodorder/payment"
)

type fakeGateway struct {
	mu        sync.Mutex
	requests  []payment.SessionRequest
	expired   []string
	createErr error
	url       string
	event     *payment.WebhookEvent
	parseErr  error
}

func (g *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	url := g.url
	if url == "" {
		url = "https://pay.example.com/" + req.OrderID
	}
	return &payment.Session{ID: "cs_" + req.OrderID, URL: url}, nil
}

func (g *fakeGateway) ExpireSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired = append(g.expired, id)
	return nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, img imagestore.Image) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	_, _ = io.Copy(io.Discard, img.Data)
	if u.url != "" {
		return u.url, nil
	}
	return "https://img.example.com/" + img.Filename, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (b *recordingBus) Publish(_ context.Context, ev events.OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context) (<-chan events.OrderEvent, error) {
	ch := make(chan events.OrderEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (b *recordingBus) statuses() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, string(ev.Status))
	}
	return out
}
