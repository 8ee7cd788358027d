package main

import "github.com/mselser95/hl-holdtime/cmd"

func main() {
	cmd.Execute()
}
