package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/vibita-lite/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
