package main

import (
	"context"
	"os"

	"github.com/koustreak/schemats/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute(context.Background()))
}
