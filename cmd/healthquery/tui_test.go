package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/a-h/healthquery/client"
	"github.com/a-h/healthquery/models"
	"github.com/a-h/healthquery/query"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) model {
	t.Helper()
	s := httptest.NewServer(handler)
	t.Cleanup(s.Close)
	return newModel(context.Background(), newLogger(io.Discard, "debug"), client.New(s.URL), models.OrderingResponse, 0, false)
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(model)
}

func TestModelShowsResponse(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","environment":"development"}`))
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	res := m.ask()()
	if _, ok := res.(query.Result); !ok {
		t.Fatalf("expected a query.Result message, got %T", res)
	}
	m.pending++
	m = update(t, m, res)

	if m.pending != 0 {
		t.Errorf("expected nothing pending, got %d", m.pending)
	}
	if m.status != "ok" {
		t.Errorf("expected status ok, got %q", m.status)
	}
	view := m.View()
	if !strings.Contains(view, `"environment": "development"`) {
		t.Errorf("expected the indented response in the view, got:\n%s", view)
	}
	if !strings.Contains(view, "status: ok") {
		t.Errorf("expected the status line in the view, got:\n%s", view)
	}
}

func TestModelKeepsResponseOnError(t *testing.T) {
	var calls atomic.Int32
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.Write([]byte(`not json`))
	})

	m.pending++
	m = update(t, m, m.ask()())
	before := m.response.text

	m.pending++
	m = update(t, m, m.ask()())
	if m.err == nil {
		t.Fatal("expected an error to be shown")
	}
	if m.response.text != before {
		t.Errorf("expected response to be unchanged, got %q", m.response.text)
	}
}

func TestModelEnterStartsRequest(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	for _, r := range "hello" {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if v := m.query.Value(); v != "hello" {
		t.Fatalf("expected query to be typed, got %q", v)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	if cmd == nil {
		t.Fatal("expected a command to fetch the response")
	}
	if m.pending != 1 {
		t.Errorf("expected 1 pending request, got %d", m.pending)
	}
	// The query is kept so it can be asked again.
	if v := m.query.Value(); v != "hello" {
		t.Errorf("expected query to be kept, got %q", v)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.pending != 2 {
		t.Errorf("expected 2 pending requests, got %d", m.pending)
	}
}
