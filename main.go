package main

import (
	"github.com/taskhive/go-taskhive/app"
)

func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
