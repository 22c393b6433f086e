package main

import "github.com/timjim333/SU2/cmd"

func main() {
	cmd.Execute()
}
