package main

import "github.com/oshokin/facility-breach/cmd/facility-server/cmd"

func main() {
	cmd.Execute()
}
