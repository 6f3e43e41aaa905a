package main

import "notevault/cmd/notectl/cmd"

func main() {
	cmd.Execute()
}
