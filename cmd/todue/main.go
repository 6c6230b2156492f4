package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/todueapp/todue/internal/app"
	"github.com/todueapp/todue/internal/notify"
	"github.com/todueapp/todue/internal/update"
)

func main() {
	cfg := app.ConfigFromEnv(app.DefaultConfig())

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "todue failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	deliveries := make(chan notify.Delivery, 16)
	a.OnDeliver(func(d notify.Delivery) {
		select {
		case deliveries <- d:
		default:
		}
	})
	a.Start()

	program := tea.NewProgram(update.NewModel(a, deliveries))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "todue failed: %v\n", err)
		os.Exit(1)
	}
}
