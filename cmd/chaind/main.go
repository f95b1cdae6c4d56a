// Command chaind runs a single-process reference node around internal/app's
// state-transition engine: genesis initialization, a thin HTTP surface for
// finalize_block/commit/query, and nothing else — consensus, networking, and
// mempool gossip are external collaborators this binary does not implement.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.JSONFormatter{})

	root := &cobra.Command{Use: "chaind"}
	root.AddCommand(genesisCmd())
	root.AddCommand(startCmd())
	root.AddCommand(queryCmd())

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
