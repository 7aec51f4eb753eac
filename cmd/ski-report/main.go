package main

import "github.com/pfrederiksen/ski-report/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
