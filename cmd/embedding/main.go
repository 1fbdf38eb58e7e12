// Package main is the entry point for the embedding server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/sentinel-embed/cmd/embedding/app"
)

func main() {
	app.NewApp().Run()
}
