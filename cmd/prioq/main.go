package main

import "prioq/internal/cli"

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
