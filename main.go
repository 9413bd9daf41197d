package main

import "pkm-indexer/cmd"

func main() {
	cmd.Execute()
}
