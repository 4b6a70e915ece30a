package main

import (
	"fmt"
	"os"

	"github.com/settingskit/settingskit/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "settingskit:", err)
		os.Exit(1)
	}
}
