package main

import "forex-rsi-alerts/internal/cli"

func main() {
	cli.Execute()
}
