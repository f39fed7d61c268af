package main

import "github.com/frahmantamala/chathub/cmd"

func main() {
	cmd.Execute()
}
