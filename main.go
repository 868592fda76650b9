package main

import "video-tracking-system/cmd"

func main() {
	cmd.Execute()
}
