package main

import "chatdesk/api/cmd"

func main() {
	cmd.Execute()
}
