package main

import "github.com/oshokin/alarm-ap/cmd/alarm-ap-ctl/cmd"

func main() {
	cmd.Execute()
}
