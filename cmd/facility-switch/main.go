package main

import "github.com/oshokin/facility-breach/cmd/facility-switch/cmd"

func main() {
	cmd.Execute()
}
