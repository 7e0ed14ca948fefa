package main

import "github.com/pfrederiksen/skate-protocols/internal/cli"

func main() {
	cli.Execute()
}
