package main

import "github.com/andrescamacho/supplyload-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
