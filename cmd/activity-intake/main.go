package main

import "github.com/pfrederiksen/activity-intake/internal/cli"

func main() {
	cli.Execute()
}
