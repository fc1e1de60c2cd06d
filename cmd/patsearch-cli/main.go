package main

import (
	"context"

	"patsearch-backend/cmd/patsearch-cli/commands"
	"patsearch-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "patsearch-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
