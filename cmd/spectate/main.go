// Spectate - follows a running emotimeter game from the terminal through
// the dashboard's status websocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-emotimeter/internal/httpc"
	"github.com/teslashibe/go-emotimeter/pkg/game"
)

func main() {
	var (
		addr  string
		start bool
	)

	cmd := &cobra.Command{
		Use:   "spectate",
		Short: "Print the live emotimeter display.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := strings.TrimRight(addr, "/")
			if start {
				if err := command(cmd.Context(), base, "start"); err != nil {
					return fmt.Errorf("start game: %w", err)
				}
			}
			return watch(cmd.Context(), wsURL(base), os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "http://127.0.0.1:8080", "dashboard base URL")
	cmd.Flags().BoolVar(&start, "start", false, "send the start command first")
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "spectate: %v\n", err)
		os.Exit(1)
	}
}

// wsURL turns the dashboard base URL into the status websocket URL.
func wsURL(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "ws://" + strings.TrimPrefix(base, "//") + "/ws/status"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/status"
	return u.String()
}

func command(ctx context.Context, base, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return httpc.PostJSON(ctx, httpc.NewClient(5*time.Second), base+"/api/command/"+name, struct{}{}, nil)
}

// watch prints one line per display update until the connection closes or
// ctx is cancelled.
func watch(ctx context.Context, endpoint string, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var d game.Display
		if err := json.Unmarshal(msg, &d); err != nil {
			continue
		}
		fmt.Fprintln(out, formatDisplay(d))
	}
}

// formatDisplay renders the display model as one terminal line.
func formatDisplay(d game.Display) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] score=%d", d.Phase, d.Score)
	if d.Target != "" {
		fmt.Fprintf(&b, " round=%d target=%s", d.Round, d.Target.Upper())
	}
	if d.Progress != nil {
		const width = 10
		// Progress comes off the wire; anything outside [0, 1] is clamped.
		filled := 0
		switch p := *d.Progress; {
		case p >= 1:
			filled = width
		case p > 0:
			filled = int(p * width)
		}
		fmt.Fprintf(&b, " [%s%s]", strings.Repeat("#", filled), strings.Repeat(".", width-filled))
	}
	fmt.Fprintf(&b, " %s", d.Feedback)
	return b.String()
}
