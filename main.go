package main

import "github.com/frahmantamala/uniform-manager/cmd"

func main() {
	cmd.Execute()
}
