package main

import "github.com/user/contextclips/cmd"

func main() {
	cmd.Execute()
}
