// Package main is the entry point for the SBS API server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	app "github.com/kart-io/sbs-x/internal/sbs-api"
)

//	@title			SBS API
//	@version		1.0
//	@description	Read-only API over the SBS question corner dataset.
//	@BasePath		/api/sbs
func main() {
	app.NewApp().Run()
}
