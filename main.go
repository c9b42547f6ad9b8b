// ausma - terminal client for the ausma.ai document assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
	"github.com/v-industries-lv/ausma-ai-documents/internal/chat"
	"github.com/v-industries-lv/ausma-ai-documents/internal/cli"
	"github.com/v-industries-lv/ausma-ai-documents/internal/config"
	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
	"github.com/v-industries-lv/ausma-ai-documents/internal/push"
	"github.com/v-industries-lv/ausma-ai-documents/internal/rooms"
	"github.com/v-industries-lv/ausma-ai-documents/internal/status"
	"github.com/v-industries-lv/ausma-ai-documents/internal/storage"
	"github.com/v-industries-lv/ausma-ai-documents/internal/ui/app"
	"github.com/v-industries-lv/ausma-ai-documents/internal/ui/styles"
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

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdRooms:
		err = cli.HandleRooms(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runTUI wires the client together and runs the full-screen program.
func runTUI(args cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
	}
	if args.Username != "" {
		cfg.User.Username = args.Username
	}

	// Local state: preferences and drafts.
	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	store, err := storage.Open(filepath.Join(dataDir, "state.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	username := cfg.User.Username
	if stored, err := store.Username(); err == nil && stored != "" && args.Username == "" {
		username = stored
	}
	_ = store.SetUsername(username)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Timeout(),
	})

	// Push channel. The initial dial failing is fatal: without it there
	// are no rooms, no messages, and no progress.
	dialCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	socket, err := push.Dial(dialCtx, &push.SocketConfig{URL: cfg.SocketEndpoint()})
	cancel()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.SocketEndpoint(), err)
	}
	defer socket.Close()

	directory := rooms.NewDirectory(client, socket, func(string) bool { return true })
	defer directory.Close()

	controller := chat.NewController(client, socket, username)
	defer controller.Close()

	program := tea.NewProgram(
		app.New(app.Deps{
			Directory:  directory,
			Controller: controller,
			Store:      store,
			Catalog:    client,
			Theme:      styles.NewTheme(),
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Forward state changes into the program loop.
	directory.SetOnChange(func(_ []model.Room) {
		program.Send(app.RoomsChangedMsg{})
	})
	controller.SetOnChange(func() {
		program.Send(app.ChatChangedMsg{})
	})
	socket.SetOnConnectionChange(func(connected bool) {
		program.Send(app.ConnectionMsg{Connected: connected})
	})

	poller := status.NewPoller(client, cfg.StatusPollInterval(), func(s *api.ServiceStatus) {
		program.Send(app.ServiceStatusMsg{Status: s})
	})
	poller.Start()
	defer poller.Stop()

	// Reload configuration when the file changes; only what can take
	// effect without a restart is applied.
	if path, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(path, func(next *config.Config) {
			poller.SetInterval(next.StatusPollInterval())
		}); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	// Seed the room set, then reopen the room from last time if it still
	// exists.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), cfg.Timeout())
	_ = directory.Refresh(seedCtx)
	cancelSeed()

	if last, err := store.LastRoom(); err == nil && last != "" {
		if _, ok := directory.Room(last); ok {
			openCtx, cancelOpen := context.WithTimeout(context.Background(), cfg.Timeout())
			_ = controller.Open(openCtx, last)
			cancelOpen()
		}
	}

	_, err = program.Run()
	return err
}
