package main

import (
	"jucyaudio/cmd"
)

func main() {
	cmd.Execute()
}
