package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/example/tenzor/internal/analysis"
	"github.com/example/tenzor/internal/stub"
)

type stubCmd struct {
	*root
	fs      *flag.FlagSet
	addr    string
	reply   string
	quiet   bool
	handler http.Handler
}

func parseStubCmd(args []string, r *root) (*stubCmd, error) {
	fs := flag.NewFlagSet("stub", flag.ContinueOnError)
	s := &stubCmd{root: r, fs: fs}
	fs.StringVar(&s.addr, "addr", "127.0.0.1:8900", "listen address")
	fs.StringVar(&s.reply, "reply", "", "JSON file holding the data list to return; echoes a fixed sample when empty")
	fs.BoolVar(&s.quiet, "quiet", false, "do not log requests")
	fs.SetOutput(io.Discard)
	if err := parseFlags(fs, s, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: s}
	}
	resp, err := s.responder()
	if err != nil {
		return nil, err
	}
	var opts []stub.Option
	if !s.quiet {
		opts = append(opts, stub.WithLogging())
	}
	s.handler = stub.NewRouter(resp, opts...)
	return s, nil
}

func (s *stubCmd) Program() string        { return s.root.subcommand("stub") }
func (s *stubCmd) FlagSet() *flag.FlagSet { return s.fs }
func (s *stubCmd) Template() string       { return "stub.txt" }

func (s *stubCmd) responder() (stub.Responder, error) {
	if s.reply == "" {
		return stub.Fixed{{Expr: "2 + 2", Result: "4"}}, nil
	}
	fixed, err := stub.LoadFile(s.reply)
	if err != nil {
		return nil, fmt.Errorf("load reply: %w", err)
	}
	return fixed, nil
}

func (s *stubCmd) Run() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("stub: shutdown: %v", err)
		}
	}()
	log.Printf("stub: serving %s on http://%s", analysis.Path, s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
