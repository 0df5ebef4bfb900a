package main

import "github.com/norwichevents/eventpipe/internal/cli"

func main() {
	cli.Execute()
}
