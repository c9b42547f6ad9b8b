// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/v-industries-lv/ausma-ai-documents/internal/api"
	"github.com/v-industries-lv/ausma-ai-documents/internal/config"
)

const commandTimeout = 10 * time.Second

// loadConfig loads the configuration with any CLI flag overrides applied.
func loadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
	}
	if args.Username != "" {
		cfg.User.Username = args.Username
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Timeout(),
	})
}

// HandleStatus prints the document-processing service status once.
func HandleStatus(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	status, err := newClient(cfg).GetServiceStatus(ctx)
	if err != nil {
		if api.IsNotReachable(err) {
			return fmt.Errorf("server at %s is not reachable", cfg.Server.URL)
		}
		return err
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(status)
	}
	fmt.Println(status.String())
	return nil
}

// HandleRooms prints the room list.
func HandleRooms(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	list, err := newClient(cfg).ListRooms(ctx)
	if err != nil {
		if api.IsNotReachable(err) {
			return fmt.Errorf("server at %s is not reachable", cfg.Server.URL)
		}
		return err
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(list)
	}
	for _, room := range list {
		fmt.Printf("%-36s  %s\n", room.ID, room.Name)
	}
	return nil
}

// HandleConfig implements "config show" and "config path".
func HandleConfig(args Args) error {
	sub := "show"
	if len(args.Raw) > 0 {
		sub = args.Raw[0]
	}

	switch sub {
	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "show":
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		fmt.Printf("server url:       %s\n", cfg.Server.URL)
		fmt.Printf("socket url:       %s\n", cfg.SocketEndpoint())
		fmt.Printf("username:         %s\n", cfg.User.Username)
		fmt.Printf("timeout:          %s\n", cfg.Timeout())
		fmt.Printf("status poll:      %s\n", cfg.StatusPollInterval())
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s (want show or path)", sub)
	}
}
