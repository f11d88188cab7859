// Package main is a diagnostic JSON-RPC endpoint over stdio, useful for
// exercising LSP-style clients against the lspwire transport stack.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/lspwire/internal/debounce"
	"github.com/dshills/lspwire/internal/endpoint"
	"github.com/dshills/lspwire/internal/rpc"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// echoParams is the parameter shape of the server/echo method.
type echoParams struct {
	Message string `json:"message"`
}

// changeParams is the parameter shape of the textDocument/didChange-style
// notification that feeds the analysis queue.
type changeParams struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

// analysisReport is pushed back to the client for each analyzed document.
type analysisReport struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Lines   int    `json:"lines"`
}

func main() {
	os.Exit(run())
}

func run() int {
	readSize := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	producer, consumer := debounce.NewQueue[string, string, int]()
	defer producer.Close()

	dispatcher := rpc.NewDispatcher()
	dispatcher.RegisterMethod("server/echo", rpc.Method(
		func(p echoParams) (echoParams, *rpc.ServerError) {
			return p, nil
		}))
	dispatcher.RegisterMethod("server/version", rpc.Method(
		func(struct{}) (map[string]string, *rpc.ServerError) {
			return map[string]string{"version": version, "commit": commit}, nil
		}))
	dispatcher.RegisterNotification("textDocument/didChange", rpc.Notification(
		func(p changeParams) {
			// Send failures mean the analyzer is gone; shutdown, not a fault.
			_ = producer.Send(debounce.Entry[string, string, int]{
				Key:     p.URI,
				Value:   p.Text,
				Version: p.Version,
			})
		}))

	out := bufio.NewWriter(os.Stdout)
	ep := endpoint.New(os.Stdin, out, dispatcher, endpoint.WithReadSize(readSize))
	defer ep.Close()

	go analyze(ctx, consumer, ep)

	if err := ep.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// analyze drains the debounce queue, processing only the newest version of
// each changed document, and pushes a report notification per result.
func analyze(ctx context.Context, consumer *debounce.Consumer[string, string, int], ep *endpoint.Endpoint) {
	defer consumer.Close()
	for {
		entry, err := consumer.Poll()
		switch {
		case err == nil:
			report, ok := rpc.NotificationPayload("lspwire/analysis", analysisReport{
				URI:     entry.Key,
				Version: entry.Version,
				Lines:   strings.Count(entry.Value, "\n") + 1,
			})
			if !ok {
				continue
			}
			if err := ep.Notify(report); err != nil {
				return
			}
		case errors.Is(err, debounce.ErrNotReady):
			select {
			case <-ctx.Done():
				return
			case <-consumer.Wake():
			}
		default:
			return
		}
	}
}

func parseFlags() int {
	var readSize int
	var showVersion bool

	flag.IntVar(&readSize, "read-size", 8*1024, "Transport read buffer size in bytes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "lspwire - diagnostic JSON-RPC endpoint over stdio\n\n")
		fmt.Fprintf(os.Stderr, "Usage: lspwire [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("lspwire %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return readSize
}
