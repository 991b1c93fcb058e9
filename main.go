package main

import "scout/cmd"

func main() {
	cmd.Execute()
}
