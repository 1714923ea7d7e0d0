package main

import (
	"github.com/kbridge/kbridge/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
