package main

import "natours_backend/internal/app"

func main() {
	app.Run()
}
