package main

import "apptrack/internal/cli"

func main() {
	cli.Execute()
}
