package main

import "helpdesk/cmd/client/cmd"

func main() {
	cmd.Execute()
}
