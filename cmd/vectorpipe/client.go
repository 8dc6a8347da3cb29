package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hyperjump/vectorpipe/internal/cli"
	"github.com/hyperjump/vectorpipe/internal/client"
	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/spf13/cobra"
)

var (
	clientFormat  string
	clientTimeout time.Duration
)

var clientCmd = &cobra.Command{
	Use:   "client [line...]",
	Short: "Send lines to a running server and print the replies",
	Long: `Connects to the server socket and forwards each argument as one protocol
line, or each line of stdin when no arguments are given. Replies are printed
one per line; lines the server does not answer (blank lines, Update) print nothing.

Examples:
  vectorpipe client "Cats are mammals. Dogs are mammals." "Tell me about pets"
  vectorpipe client Update "Birds can fly."
  printf 'Cats are mammals.\npets\n' | vectorpipe client --format json`,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().StringVar(&clientFormat, "format", "text", "output format: text or json")
	clientCmd.Flags().DurationVar(&clientTimeout, "timeout", 60*time.Second, "maximum wait per reply")
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(clientFormat)
	if err != nil {
		return err
	}
	path := socketPath
	if path == "" {
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		path = cfg.Socket.Path
	}
	if path == "" {
		path = config.DefaultSocketPath()
	}

	ctx := cmd.Context()
	c, err := client.Dial(ctx, path)
	if err != nil {
		return err
	}
	defer c.Close()

	var lines lineSource
	if len(args) > 0 {
		lines = sliceLines(args)
	} else {
		if stdinIsTerminal() {
			fmt.Fprintln(cmd.ErrOrStderr(), "Reading lines from stdin (Ctrl-D to finish)")
		}
		lines = readerLines(cmd.InOrStdin())
	}
	return relayLines(ctx, client.NewRelay(c), lines, cmd.OutOrStdout(), format, clientTimeout)
}

// lineSource yields the next line, or false when exhausted.
type lineSource func() (string, bool, error)

func sliceLines(lines []string) lineSource {
	i := 0
	return func() (string, bool, error) {
		if i >= len(lines) {
			return "", false, nil
		}
		i++
		return lines[i-1], true, nil
	}
}

func readerLines(r io.Reader) lineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return func() (string, bool, error) {
		if scanner.Scan() {
			return scanner.Text(), true, nil
		}
		return "", false, scanner.Err()
	}
}

func relayLines(ctx context.Context, relay *client.Relay, next lineSource, out io.Writer, format cli.OutputFormat, timeout time.Duration) error {
	for {
		line, ok, err := next()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			return nil
		}
		start := time.Now()
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		reply, replied, err := relay.Forward(reqCtx, line)
		cancel()
		if err != nil {
			return err
		}
		if !replied {
			continue
		}
		ex := cli.Exchange{Request: line, Reply: reply, ElapsedMs: time.Since(start).Milliseconds()}
		if err := cli.WriteExchange(out, ex, format); err != nil {
			return err
		}
	}
}

// stdinIsTerminal reports whether stdin is interactive.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
