package main

import "mediasearch/cmd"

func main() {
	cmd.Execute()
}
