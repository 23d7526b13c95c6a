package main

import "github.com/andrescamacho/eve-pi-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
