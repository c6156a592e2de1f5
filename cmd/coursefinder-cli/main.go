package main

import (
	"context"

	"coursefinder-backend/cmd/coursefinder-cli/commands"
	"coursefinder-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "coursefinder-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
