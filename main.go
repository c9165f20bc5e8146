package main

import "github.com/vibast-solutions/ms-go-apikeys/cmd"

func main() {
	cmd.Execute()
}
