// Package main is the entry point for the sbs command line client.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	cli "github.com/kart-io/sbs-x/internal/sbs-cli"
)

func main() {
	cli.NewApp().Run()
}
