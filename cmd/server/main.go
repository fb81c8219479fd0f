package main

import "taskorganizer/internal/app"

func main() {
	app.Run()
}
