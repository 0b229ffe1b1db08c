package main

import "github.com/oshokin/alarm-ap/cmd/alarm-ap/cmd"

func main() {
	cmd.Execute()
}
