// Command pkm-search runs full-text queries against ingested documents.
package main

import "pkm-indexer/cmd"

func main() {
	cmd.Run(cmd.NewSearchRootCmd())
}
