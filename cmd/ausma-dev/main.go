// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command ausma-dev runs the in-memory development backend so the client
// can be exercised without a real ausma.ai deployment.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/v-industries-lv/ausma-ai-documents/internal/devserver"
	"github.com/v-industries-lv/ausma-ai-documents/internal/model"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "listen address")
	modelName := flag.String("model", "dev-echo", "default model name")
	kbs := flag.String("kbs", "Docs", "comma-separated knowledge base names")
	delay := flag.Duration("delay", 300*time.Millisecond, "delay between canned progress events")
	flag.Parse()

	server := devserver.NewServer(devserver.Options{
		Defaults:       model.RoomDefaults{Model: *modelName},
		Models:         []string{*modelName},
		KnowledgeBases: strings.Split(*kbs, ","),
		ReplyDelay:     *delay,
	})

	fmt.Printf("ausma-dev listening on http://%s (socket at ws://%s/socket)\n", *addr, *addr)
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
