package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"corechain/internal/app"
	"corechain/internal/primitives"
)

func genesisCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "genesis"}
	cmd.AddCommand(genesisInitCmd())
	return cmd
}

func genesisInitCmd() *cobra.Command {
	var chainID string
	c := &cobra.Command{
		Use:   "init [out-file]",
		Short: "write a template genesis state to out-file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := primitives.MockAddress(0)
			state := app.GenesisState{
				ChainID: chainID,
				Config:  app.Config{Owner: owner},
				AppConfig: app.AppConfig{
					Settings: map[string]string{},
				},
				Msgs: nil,
			}
			b, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], b, 0o644)
		},
	}
	c.Flags().StringVar(&chainID, "chain-id", "chaind-localnet", "chain id to embed in the genesis state")
	return c
}
