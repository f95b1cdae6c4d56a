package app

import (
	"crypto/sha256"
	"encoding/json"
	"testing"

	"corechain/internal/merkle"
	"corechain/internal/primitives"
	"corechain/internal/store"
)

func newTestApp(t *testing.T) (*App, primitives.Address) {
	t.Helper()
	engine, err := NewEngine("test-chain", 0, 8, 3, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	root := store.NewMemStore()
	a := NewApp(engine, root, 3)

	owner := primitives.MockAddress(1)
	g := GenesisState{
		ChainID:   "test-chain",
		Config:    Config{Owner: owner},
		AppConfig: AppConfig{Settings: map[string]string{"name": "test"}},
	}
	if _, err := a.InitGenesis(g); err != nil {
		t.Fatalf("init genesis: %v", err)
	}
	return a, owner
}

func TestInitGenesisPersistsConfig(t *testing.T) {
	a, owner := newTestApp(t)

	raw, err := a.Config()
	if err != nil {
		t.Fatalf("config query: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if cfg.Owner != owner {
		t.Fatalf("owner = %s, want %s", cfg.Owner, owner)
	}

	rawApp, err := a.AppConfig()
	if err != nil {
		t.Fatalf("app_config query: %v", err)
	}
	var appCfg AppConfig
	if err := json.Unmarshal(rawApp, &appCfg); err != nil {
		t.Fatalf("unmarshal app_config: %v", err)
	}
	if appCfg.Settings["name"] != "test" {
		t.Fatalf("app_config settings = %v, want name=test", appCfg.Settings)
	}
}

func TestInitGenesisInstallsCronjobsFromConfig(t *testing.T) {
	engine, err := NewEngine("test-chain", 0, 8, 3, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	root := store.NewMemStore()
	a := NewApp(engine, root, 3)

	owner := primitives.MockAddress(1)
	contract := primitives.MockAddress(7)
	g := GenesisState{
		ChainID: "test-chain",
		Config: Config{
			Owner:    owner,
			Cronjobs: map[primitives.Address]primitives.Duration{contract: 10},
		},
	}
	if _, err := a.InitGenesis(g); err != nil {
		t.Fatalf("init genesis: %v", err)
	}

	ec := a.readOnlyExecCtx()
	job, err := ec.keeper.ScheduledJob.Load(ec.keeper.Storage, store.RawKey(contract.Bytes()))
	if err != nil {
		t.Fatalf("load scheduled job installed at genesis: %v", err)
	}
	if job.Interval != 10 {
		t.Fatalf("job.Interval = %v, want 10", job.Interval)
	}
	if job.Next != 10 {
		t.Fatalf("job.Next = %v, want 10 (genesis timestamp 0 + interval 10)", job.Next)
	}
}

func TestBalanceOfUnknownAccountIsZeroNotError(t *testing.T) {
	a, _ := newTestApp(t)
	nobody := primitives.MockAddress(99)

	raw, err := a.Balance(nobody.String(), "uatom")
	if err != nil {
		t.Fatalf("balance query: %v", err)
	}
	var entry balanceEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatalf("unmarshal balance: %v", err)
	}
	if entry.Amount != "0" {
		t.Fatalf("amount = %q, want 0", entry.Amount)
	}
}

func TestFinalizeBlockThenCommitAdvancesVersionAndAppHash(t *testing.T) {
	a, _ := newTestApp(t)

	genesisHash, ok := a.tree.RootHash(0)
	if !ok {
		t.Fatal("genesis root hash not recorded at version 0")
	}

	block := Block{Info: BlockInfo{Height: 1, Timestamp: primitives.Timestamp(1000)}}
	outcome, upgrade, err := a.FinalizeBlock(block)
	if err != nil {
		t.Fatalf("finalize_block: %v", err)
	}
	if upgrade != nil {
		t.Fatal("no upgrade was scheduled, FinalizeBlock must not signal one")
	}
	// An empty block writes nothing new, so its app_hash equals genesis's.
	if outcome.AppHash != genesisHash {
		t.Fatalf("empty block's app_hash = %x, want unchanged genesis hash %x", outcome.AppHash, genesisHash)
	}

	if err := a.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if a.version != 1 {
		t.Fatalf("version after commit = %d, want 1", a.version)
	}

	// Commit without a preceding FinalizeBlock must fail (spec §6.2: "must
	// always follow exactly one finalize_block").
	if err := a.Commit(); err == nil {
		t.Fatal("expected an error committing with no pending finalized block")
	}
}

func TestQueryStoreWithProofVerifiesAgainstTreeRoot(t *testing.T) {
	a, owner := newTestApp(t)

	root, ok := a.tree.RootHash(0)
	if !ok {
		t.Fatal("genesis root not found")
	}

	_ = owner
	configKey := []byte{0x10} // nsConfig, within the 0x01 application-state partition
	value, proof, err := a.QueryStore(configKey, nil, true)
	if err != nil {
		t.Fatalf("query_store: %v", err)
	}
	if value == nil {
		t.Fatal("expected the genesis config to be readable via query_store")
	}
	if proof == nil {
		t.Fatal("expected a proof when prove=true")
	}
	keyHash := primitives.Hash256(sha256.Sum256(configKey))
	if err := merkle.Verify(proof, root, keyHash, value); err != nil {
		t.Fatalf("proof does not verify against the genesis root: %v", err)
	}
}
