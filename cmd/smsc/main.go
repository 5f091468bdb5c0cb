package main

import "smsc-client/cmd/smsc/cmd"

func main() {
	cmd.Execute()
}
