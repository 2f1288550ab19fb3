// mentor TUI - a terminal study assistant backed by the Generative
// Language API.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	chatctl "github.com/jeranaias/mentor-tui/internal/chat"
	"github.com/jeranaias/mentor-tui/internal/cli"
	"github.com/jeranaias/mentor-tui/internal/commands"
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/docs"
	"github.com/jeranaias/mentor-tui/internal/export"
	"github.com/jeranaias/mentor-tui/internal/gemini"
	"github.com/jeranaias/mentor-tui/internal/server"
	"github.com/jeranaias/mentor-tui/internal/state"
	"github.com/jeranaias/mentor-tui/internal/store"
	"github.com/jeranaias/mentor-tui/internal/tools"
	uichat "github.com/jeranaias/mentor-tui/internal/ui/chat"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		run(args, runTUI)
	case cli.CmdServe:
		run(args, runServe)
	case cli.CmdExport:
		run(args, runExport)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// run loads configuration, applies CLI overrides, and invokes the
// command handler.
func run(args cli.Args, fn func(*config.Config, cli.Args) error) {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := fn(cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(args cli.Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Model != "" {
		cfg.API.ChatModel = args.Model
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	if args.Port != 0 {
		cfg.Server.Port = args.Port
	}
	return cfg, nil
}

// openState opens the database, restores the snapshot, and wires the
// write-through persistence subscriber.
func openState(cfg *config.Config) (*store.Store, *state.Dispatcher, error) {
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening state database: %w", err)
	}

	snapshot, err := st.Load()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("restoring state: %w", err)
	}

	d := state.NewDispatcher(snapshot)
	st.Attach(d)
	return st, d, nil
}

// newClient builds the API client from config and settings. A configured
// proxy URL switches the client to keyless proxy mode.
func newClient(cfg *config.Config) *gemini.Client {
	cc := gemini.DefaultConfig()
	cc.APIKey = cfg.API.Key
	cc.Timeout = time.Duration(cfg.API.TimeoutSecs) * time.Second
	if cfg.Server.ProxyURL != "" {
		cc.ProxyMode = true
		cc.BaseURL = cfg.Server.ProxyURL
	} else if cfg.API.BaseURL != "" {
		cc.BaseURL = cfg.API.BaseURL
	}
	return gemini.NewClient(cc)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(cfg *config.Config, args cli.Args) error {
	if err := cli.RequiresTTY("run the TUI"); err != nil {
		return err
	}

	// The TUI owns the terminal; route logs to a file instead.
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logPath := filepath.Join(cfg.Storage.DataDir, "mentor.log")
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	st, dispatcher, err := openState(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client := newClient(cfg)
	controller := chatctl.NewController(dispatcher, client)
	cmdCtx := &commands.Context{
		Dispatcher: dispatcher,
		Tools:      tools.NewService(dispatcher, client),
		Chat:       controller,
		ExportDir:  cfg.Storage.DataDir,
		Theme:      cfg.UI.Theme,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := docs.NewWatcher(cfg.WatchPath(), dispatcher)
	if err != nil {
		log.Printf("MAIN | watcher disabled | err=%v", err)
	} else {
		go watcher.Run(ctx)
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	model := uichat.NewModel(dispatcher, controller, cmdCtx, theme, cfg.API.ChatModel)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// =============================================================================
// SERVE
// =============================================================================

func runServe(cfg *config.Config, args cli.Args) error {
	if cfg.API.Key == "" {
		return fmt.Errorf("no API key configured; set MENTOR_API_KEY or api.key in the config file")
	}

	srv := server.NewServer(cfg.Server.Port, cfg.API.Key)
	if !args.Quiet {
		fmt.Printf("mentor proxy listening on 127.0.0.1:%d\n", srv.Port())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func runExport(cfg *config.Config, args cli.Args) error {
	st, dispatcher, err := openState(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	snapshot := dispatcher.State()

	// No session ID: dump the full durable state.
	if args.SessionID == "" {
		path := filepath.Join(args.Output,
			fmt.Sprintf("mentor_state_%s.json", time.Now().Format("20060102_150405")))
		if err := export.WriteStateSnapshot(snapshot, path); err != nil {
			return err
		}
		if !args.Quiet {
			fmt.Printf("Exported state to %s\n", path)
		}
		return nil
	}

	session := snapshot.Session(args.SessionID)
	if session == nil {
		return fmt.Errorf("no session with ID %q", args.SessionID)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = args.Output
	opts.Theme = cfg.UI.Theme

	var exporter export.Exporter
	switch args.Format {
	case "md", "markdown":
		exporter = export.NewMarkdownExporter(opts)
	case "html":
		exporter = export.NewHTMLExporter(opts)
	case "json":
		exporter = export.NewJSONExporter(opts)
	default:
		return fmt.Errorf("unknown export format %q (want json, md, or html)", args.Format)
	}

	path, err := export.ExportToFile(session, exporter, opts)
	if err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Printf("Exported session to %s\n", path)
	}
	return nil
}
