/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of Metis.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/cmd"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()

	// Spans stay local (JSONL under the state dir) and only when opted in.
	if err := telemetry.Init("metis"); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}

	// Ctrl-C cancels the command context so polling and watch loops shut
	// down cleanly instead of dying mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
