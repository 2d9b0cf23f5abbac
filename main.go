// Package main is the entry point for the rushmetrics CLI, which compares
// running-back carry distributions between college football teams.
package main

import "github.com/pable/go-rushing-metrics/cmd"

func main() {
	cmd.Execute()
}
