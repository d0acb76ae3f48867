package main

import "github.com/oshokin/facility-breach/cmd/facility-alarm/cmd"

func main() {
	cmd.Execute()
}
