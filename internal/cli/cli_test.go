// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(t *testing.T, args Args)
	}{
		{
			name:    "no arguments starts the client",
			argv:    []string{"ausma"},
			wantCmd: CmdTUI,
		},
		{
			name:    "status",
			argv:    []string{"ausma", "status"},
			wantCmd: CmdStatus,
		},
		{
			name:    "status short alias",
			argv:    []string{"ausma", "s"},
			wantCmd: CmdStatus,
		},
		{
			name:    "rooms with json flag",
			argv:    []string{"ausma", "--json", "rooms"},
			wantCmd: CmdRooms,
			check: func(t *testing.T, args Args) {
				if !args.JSON {
					t.Error("JSON flag not parsed")
				}
			},
		},
		{
			name:    "server override",
			argv:    []string{"ausma", "--server", "http://other:5000", "status"},
			wantCmd: CmdStatus,
			check: func(t *testing.T, args Args) {
				if args.ServerURL != "http://other:5000" {
					t.Errorf("ServerURL = %q", args.ServerURL)
				}
			},
		},
		{
			name:    "config subcommand retained",
			argv:    []string{"ausma", "config", "path"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, args Args) {
				if len(args.Raw) != 1 || args.Raw[0] != "path" {
					t.Errorf("Raw = %v", args.Raw)
				}
			},
		},
		{
			name:    "version",
			argv:    []string{"ausma", "version"},
			wantCmd: CmdVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()
			os.Args = tt.argv

			cmd, args := Parse()
			if cmd != tt.wantCmd {
				t.Errorf("Parse() command = %d, want %d", cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}
