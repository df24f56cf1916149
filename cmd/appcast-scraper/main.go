package main

import (
	"os"

	"appcast-scraper/cmd/appcast-scraper/commands"
	"appcast-scraper/lib/util/serviceutil"
)

func main() {
	os.Exit(run())
}

// run keeps every deferred call ahead of os.Exit
func run() int {
	ctx, stop := serviceutil.SignalContext()
	defer stop()

	err := commands.ExecuteContext(ctx)
	if err != nil {
		return 1
	}
	return 0
}
