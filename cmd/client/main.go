package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stillwater-client",
		Short:        "Terminal client for a stillwater server",
		SilenceUsage: true,
	}
	root.AddCommand(breatheCmd())
	return root
}

func breatheCmd() *cobra.Command {
	var (
		server   string
		token    string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "breathe",
		Short: "Run a guided breathing session and print each phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env := os.Getenv("STILLWATER_SERVER"); env != "" && !cmd.Flags().Changed("server") {
				server = env
			}
			if token == "" {
				token = os.Getenv("STILLWATER_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("a token is required (--token or STILLWATER_TOKEN)")
			}
			c := &apiClient{
				Base:  strings.TrimRight(server, "/"),
				Token: token,
				HTTP:  &http.Client{Timeout: 10 * time.Second},
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return breathe(ctx, c, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "server base URL (or STILLWATER_SERVER)")
	cmd.Flags().StringVar(&token, "token", "", "session token (or STILLWATER_TOKEN)")
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (default: until interrupted)")
	return cmd
}

// breathe mounts a session, starts it and prints phase changes until ctx is
// done. The session is always stopped and unmounted on the way out.
func breathe(ctx context.Context, c *apiClient, out io.Writer) error {
	sess, err := c.Mount(ctx)
	if err != nil {
		return err
	}
	defer func() {
		cleanup, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Stop(cleanup, sess.ID); err != nil {
			fmt.Fprintln(os.Stderr, "stop:", err)
		}
		if err := c.Unmount(cleanup, sess.ID); err != nil {
			fmt.Fprintln(os.Stderr, "unmount:", err)
		}
	}()

	conn, err := c.Stream(ctx, sess.ID)
	if err != nil {
		return err
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := c.Start(ctx, sess.ID); err != nil {
		return err
	}

	var lastFlips uint64
	printed := false
	for {
		var msg sessionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream: %w", err)
		}
		if !msg.State.Active {
			continue
		}
		if printed && msg.State.Flips == lastFlips {
			continue
		}
		printed = true
		lastFlips = msg.State.Flips
		fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), msg.View.Label)
	}
}
