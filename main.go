package main

import "github.com/anushkanegi003/google-meet/cmd"

func main() {
	cmd.Execute()
}
