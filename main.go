package main

import "autoassign/internal/app"

func main() {
	app.Main()
}
