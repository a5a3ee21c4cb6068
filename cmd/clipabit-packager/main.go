package main

import "github.com/clipabit/plugin-packager/cmd/clipabit-packager/cmd"

func main() {
	cmd.Execute()
}
