package main

import "github.com/SLAWWWW/CommunityCompass/cmd"

func main() {
	cmd.Run()
}
