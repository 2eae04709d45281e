package main

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-emotimeter/pkg/emotion"
	"github.com/teslashibe/go-emotimeter/pkg/game"
)

func TestWSURL(t *testing.T) {
	tests := map[string]string{
		"http://127.0.0.1:8080": "ws://127.0.0.1:8080/ws/status",
		"https://game.local/":   "wss://game.local/ws/status",
		"http://host:1/emo":     "ws://host:1/emo/ws/status",
		"localhost:8080":        "ws://localhost:8080/ws/status",
	}
	for in, want := range tests {
		if got := wsURL(in); got != want {
			t.Errorf("wsURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDisplay(t *testing.T) {
	p := 0.3
	d := game.Display{
		Phase:     game.PhaseRoundActive,
		Target:    emotion.Sad,
		Round:     2,
		Score:     10,
		Hold:      3,
		Threshold: 10,
		Progress:  &p,
		Feedback:  "Keep holding SAD! (3/10)",
	}
	want := "[round_active] score=10 round=2 target=SAD [###.......] Keep holding SAD! (3/10)"
	if got := formatDisplay(d); got != want {
		t.Errorf("formatDisplay =\n%q\nwant\n%q", got, want)
	}

	bars := []struct {
		progress float64
		want     string
	}{
		{progress: 1, want: "[##########]"},
		{progress: 1.5, want: "[##########]"},
		{progress: -0.2, want: "[..........]"},
		{progress: math.NaN(), want: "[..........]"},
	}
	for _, tc := range bars {
		p := tc.progress
		d := game.Display{Phase: game.PhaseRoundActive, Progress: &p}
		if got := formatDisplay(d); !strings.Contains(got, tc.want) {
			t.Errorf("progress %v: %q, want bar %s", tc.progress, got, tc.want)
		}
	}

	idle := game.Display{Feedback: "Press 's' to start the game!"}
	if got := formatDisplay(idle); got != "[not_started] score=0 Press 's' to start the game!" {
		t.Errorf("idle = %q", got)
	}
}

func TestWatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"phase":"cooldown","target":"happy","round":1,"score":10,"feedback":"GREAT! +10 Points for HAPPY!"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.ReadMessage()
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := watch(context.Background(), wsURL(srv.URL), &out); err != nil {
		t.Fatalf("watch: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "[cooldown] score=10 round=1 target=HAPPY") {
		t.Errorf("line = %q", lines[0])
	}
}
