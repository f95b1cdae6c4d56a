package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"corechain/internal/app"
	"corechain/internal/merkle"
	"corechain/internal/query"
	"corechain/internal/store"
	"corechain/pkg/config"
)

func startCmd() *cobra.Command {
	var genesisPath, listen string
	c := &cobra.Command{
		Use:   "start",
		Short: "initialize genesis and serve finalize_block/commit/query over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				logrus.Warnf("config: %v, using defaults", err)
				cfg = &config.Config{}
			}

			engine, err := app.NewEngine(
				firstNonEmpty(cfg.Chain.ID, "chaind-localnet"),
				firstNonZero(cfg.VM.ModuleCacheCapacity, 256),
				firstNonZero(cfg.Gas.MaxReplyDepth, 8),
				firstNonZero(cfg.Gas.MaxQueryDepth, 3),
				func(msg string) { logrus.Debug(msg) },
			)
			if err != nil {
				return err
			}

			root := store.NewMemStore()
			a := app.NewApp(engine, root, firstNonZero(cfg.Gas.MaxQueryDepth, 3))

			if genesisPath != "" {
				b, err := os.ReadFile(genesisPath)
				if err != nil {
					return err
				}
				var g app.GenesisState
				if err := json.Unmarshal(b, &g); err != nil {
					return err
				}
				hash, err := a.InitGenesis(g)
				if err != nil {
					return err
				}
				logrus.Infof("genesis applied, app_hash=%s", hash.String())
			}

			return serve(a, listen)
		},
	}
	c.Flags().StringVar(&genesisPath, "genesis", "", "genesis state file to apply on startup")
	c.Flags().StringVar(&listen, "listen", ":9090", "listen address")
	return c
}

func firstNonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func firstNonZero(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}

// limit throttles every request to the node's HTTP surface, matching the
// reference VM server's rate-limiting middleware.
func limit(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(200), 400)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func serve(a *app.App, listen string) error {
	r := mux.NewRouter()
	r.Use(limit)

	r.HandleFunc("/finalize_block", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Block app.Block `json:"block"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		outcome, upgrade, err := a.FinalizeBlock(body.Block)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct {
			Outcome app.BlockOutcome `json:"outcome"`
			Upgrade *app.NextUpgrade `json:"upgrade,omitempty"`
		}{outcome, upgrade})
	}).Methods("POST")

	r.HandleFunc("/commit", func(w http.ResponseWriter, req *http.Request) {
		if err := a.Commit(); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct{}{})
	}).Methods("POST")

	r.HandleFunc("/query_app", func(w http.ResponseWriter, req *http.Request) {
		var q query.Query
		if !decodeBody(w, req, &q) {
			return
		}
		resp, err := a.QueryApp(q)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, resp)
	}).Methods("POST")

	r.HandleFunc("/query_store", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Key    []byte  `json:"key"`
			Height *uint64 `json:"height,omitempty"`
			Prove  bool    `json:"prove"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		value, proof, err := a.QueryStore(body.Key, body.Height, body.Prove)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct {
			Value []byte              `json:"value,omitempty"`
			Proof *merkle.MerkleProof `json:"proof,omitempty"`
		}{Value: value, Proof: proof})
	}).Methods("POST")

	r.HandleFunc("/simulate", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Tx app.Tx `json:"tx"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		writeJSON(w, a.Simulate(body.Tx))
	}).Methods("POST")

	r.HandleFunc("/check_tx", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Tx app.Tx `json:"tx"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		if err := a.CheckTx(body.Tx); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct{}{})
	}).Methods("POST")

	srv := &http.Server{
		Addr:         listen,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	logrus.Infof("chaind listening on %s", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func decodeBody(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
