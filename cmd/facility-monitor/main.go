package main

import "github.com/oshokin/facility-breach/cmd/facility-monitor/cmd"

func main() {
	cmd.Execute()
}
