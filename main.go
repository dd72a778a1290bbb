package main

import "txnrisk/internal/cli"

func main() {
	cli.Execute()
}
