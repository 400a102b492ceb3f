package main

import (
	"fmt"
	"os"

	"github.com/crucial707/educompanion/cmd/cli/ask"
	"github.com/crucial707/educompanion/cmd/cli/auth"
	"github.com/crucial707/educompanion/cmd/cli/file"
	"github.com/crucial707/educompanion/cmd/cli/progress"
	"github.com/crucial707/educompanion/cmd/cli/root"
)

func main() {
	cmd := root.GetRoot()
	auth.InitAuth(cmd)
	file.InitFile(cmd)
	progress.InitProgress(cmd)
	ask.InitAsk(cmd)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "edu:", err)
		os.Exit(1)
	}
}
