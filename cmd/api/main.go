package main

import (
	"go.uber.org/fx"

	"github.com/mesa-labs/mesa/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
