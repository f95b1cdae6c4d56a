package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"corechain/internal/query"
	"corechain/pkg/utils"
)

func queryCmd() *cobra.Command {
	var addr string
	c := &cobra.Command{Use: "query", Short: "query a running chaind node over HTTP"}
	c.PersistentFlags().StringVar(&addr, "node", utils.EnvOrDefault("CHAIND_NODE", "http://127.0.0.1:9090"), "chaind node address")

	c.AddCommand(queryConfigCmd(&addr))
	c.AddCommand(queryBalanceCmd(&addr))
	c.AddCommand(queryStoreCmd(&addr))
	return c
}

func queryConfigCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "fetch the app's genesis config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postAndPrint(*addr+"/query_app", query.Query{Config: &query.ConfigQuery{}})
		},
	}
}

func queryBalanceCmd(addr *string) *cobra.Command {
	var address, denom string
	c := &cobra.Command{
		Use:   "balance",
		Short: "fetch an account balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postAndPrint(*addr+"/query_app", query.Query{Balance: &query.BalanceQuery{Address: address, Denom: denom}})
		},
	}
	c.Flags().StringVar(&address, "address", "", "account address (hex)")
	c.Flags().StringVar(&denom, "denom", "", "denom")
	return c
}

func queryStoreCmd(addr *string) *cobra.Command {
	var key string
	var height uint64
	var prove bool
	c := &cobra.Command{
		Use:   "store",
		Short: "fetch a raw key from the committed KV store",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{
				"key":   []byte(key),
				"prove": prove,
			}
			if height != 0 {
				body["height"] = height
			}
			return postAndPrint(*addr+"/query_store", body)
		},
	}
	c.Flags().StringVar(&key, "key", "", "raw key (utf-8)")
	c.Flags().Uint64Var(&height, "height", 0, "version to query at; 0 = latest")
	c.Flags().BoolVar(&prove, "prove", false, "request a Merkle proof")
	return c
}

func postAndPrint(url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("node returned %s: %s", resp.Status, out)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}
