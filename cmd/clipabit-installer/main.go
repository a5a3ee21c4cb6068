package main

import "github.com/clipabit/plugin-packager/cmd/clipabit-installer/cmd"

func main() {
	cmd.Execute()
}
