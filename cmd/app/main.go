package main

import (
	"go.uber.org/fx"

	"github.com/groupwarden/groupwarden/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
