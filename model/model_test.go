package model

import (
	"context"
	"errors"
	"testing"

	"github.com/thependalorian/salesflow/core"
)

func TestCollectFinalWinsOverPartials(t *testing.T) {
	respCh := make(chan Response, 4)
	errCh := make(chan error, 1)
	respCh <- Response{Partial: true, Text: "Hel"}
	respCh <- Response{Partial: true, Text: "lo"}
	respCh <- Response{Text: "Hello there", FinishReason: "stop"}
	close(respCh)
	close(errCh)

	text, err := Collect(context.Background(), respCh, errCh)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if text != "Hello there" {
		t.Fatalf("expected the final chunk to win, got %q", text)
	}
}

func TestCollectConcatenatesPartialsWithoutFinal(t *testing.T) {
	respCh := make(chan Response, 2)
	errCh := make(chan error, 1)
	respCh <- Response{Partial: true, Text: "Hel"}
	respCh <- Response{Partial: true, Text: "lo"}
	close(respCh)
	close(errCh)

	text, err := Collect(context.Background(), respCh, errCh)
	if err != nil || text != "Hello" {
		t.Fatalf("unexpected result: %q %v", text, err)
	}
}

func TestCollectSurfacesBufferedError(t *testing.T) {
	respCh := make(chan Response)
	errCh := make(chan error, 1)
	errCh <- errors.New("provider down")
	close(respCh)
	close(errCh)

	if _, err := Collect(context.Background(), respCh, errCh); err == nil {
		t.Fatalf("expected the buffered error to surface")
	}
}

func TestMockModelCannedResponses(t *testing.T) {
	mock := NewMockModel("m")
	mock.AddResponse("ping", "pong")

	respCh, errCh := mock.Generate(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("ping")},
	})
	text, err := Collect(context.Background(), respCh, errCh)
	if err != nil || text != "pong" {
		t.Fatalf("unexpected result: %q %v", text, err)
	}
	if mock.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.Calls())
	}
}

func TestMockModelStreamingChunks(t *testing.T) {
	mock := NewMockModel("m")
	mock.AddResponse("hi", "ok!")

	respCh, errCh := mock.Generate(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Stream:   true,
	})

	var partials int
	var final string
	for resp := range respCh {
		if resp.Partial {
			partials++
			continue
		}
		final = resp.Text
	}
	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partials != 3 || final != "ok!" {
		t.Fatalf("unexpected stream shape: %d partials, final %q", partials, final)
	}
}
