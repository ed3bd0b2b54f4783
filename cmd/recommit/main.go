package main

import (
	"github.com/arpxspace/recommit/internal/cli"
)

func main() {
	cli.Execute()
}
