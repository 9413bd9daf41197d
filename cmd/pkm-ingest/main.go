// Command pkm-ingest stores the text of a directory's documents.
package main

import "pkm-indexer/cmd"

func main() {
	cmd.Run(cmd.NewIngestRootCmd())
}
