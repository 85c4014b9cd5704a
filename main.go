package main

import (
	"os"

	"github.com/GoInsights-Admin/GoInsights-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
