package main

import "timecard/internal/cli"

func main() {
	cli.Execute()
}
