package operator

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/warpfleet/warpd/hyperlane"
	"github.com/warpfleet/warpd/runner"
)

// ErrConfigInvalid marks a run rejected because a caller-supplied
// configuration document failed to parse. No deployment command runs.
var ErrConfigInvalid = errors.New("invalid configuration document")

// DefaultBinary is the wrapped CLI executable.
const DefaultBinary = "hyperlane"

// coreTemplatePath seeds fresh core deployments.
const coreTemplatePath = "./configs/core-config.yaml"

// DefaultChains is the reconcile target set used when none is configured.
var DefaultChains = []string{"holesky", "tangletestnet"}

// ConfigInvalidError carries which document was rejected and why. It matches
// ErrConfigInvalid under errors.Is.
type ConfigInvalidError struct {
	Doc string
	Err error
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Doc, e.Err)
}

func (e *ConfigInvalidError) Unwrap() error { return e.Err }

func (e *ConfigInvalidError) Is(target error) bool { return target == ErrConfigInvalid }

// InfraMode selects between deploying fresh core infrastructure and reusing
// an existing deployment's configuration.
type InfraMode struct {
	existing *hyperlane.CoreConfig
}

// Fresh deploys new core infrastructure.
func Fresh() InfraMode { return InfraMode{} }

// Reuse carries the validated configuration of an existing deployment.
func Reuse(cfg hyperlane.CoreConfig) InfraMode {
	return InfraMode{existing: &cfg}
}

// Existing returns the reused core config, if any.
func (m InfraMode) Existing() (hyperlane.CoreConfig, bool) {
	if m.existing == nil {
		return hyperlane.CoreConfig{}, false
	}
	return *m.existing, true
}

// BatchRunner abstracts the command runner.
type BatchRunner interface {
	RunBatch(ctx context.Context, commands []runner.Command) (runner.Output, error)
}

// Config parameterizes an Orchestrator.
type Config struct {
	Logger *zap.Logger
	Runner BatchRunner
	// Binary is the CLI executable name; defaults to DefaultBinary.
	Binary string
	// Chains is the ordered list of chains whose core config is read and
	// re-applied after the warp deployment; defaults to DefaultChains.
	Chains []string
	// Key is the deployer signing key, passed explicitly so the orchestrator
	// never reads process environment itself. Its presence is required before
	// any command runs; the process manager delivers it to the CLI.
	Key string
}

// Request carries one warp route deployment job.
type Request struct {
	// WarpConfig is the raw warp route document (YAML or JSON).
	WarpConfig []byte
	// Advanced is supplied by callers and recorded in the run log. Core init
	// always runs the advanced (non-trusted-relayer) variant regardless.
	Advanced bool
	// ExistingCoreConfig, when non-empty, is the serialized core config of an
	// already-deployed infrastructure to reuse.
	ExistingCoreConfig []byte
}

// Result reports a finished run. Outputs holds every step's captured
// standard output, keyed by step name.
type Result struct {
	Status  int
	Outputs runner.Output
}

// Orchestrator drives one warp route deployment at a time through the
// wrapped CLI. Instances are safe to discard after a run; they hold no
// per-run state.
type Orchestrator struct {
	logger *zap.Logger
	runner BatchRunner
	binary string
	chains []string
}

// New validates cfg and creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("batch runner is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("deployer key is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if len(cfg.Chains) == 0 {
		cfg.Chains = DefaultChains
	}

	if addr, err := deployerAddress(cfg.Key); err == nil {
		cfg.Logger.Info("deployer key loaded", zap.String("address", addr))
	} else {
		cfg.Logger.Warn("could not derive deployer address from key", zap.Error(err))
	}

	return &Orchestrator{
		logger: cfg.Logger,
		runner: cfg.Runner,
		binary: cfg.Binary,
		chains: cfg.Chains,
	}, nil
}

// Run executes one deployment: core infrastructure setup, warp route init
// and deploy, then a read/apply reconciliation of every configured chain.
// Any command failure is fatal to the run; there is no rollback and no retry.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	mode := Fresh()
	if len(req.ExistingCoreConfig) > 0 {
		coreCfg, err := hyperlane.ParseCoreConfig(req.ExistingCoreConfig)
		if err != nil {
			return Result{Status: 1}, &ConfigInvalidError{Doc: "existing core config", Err: err}
		}
		o.logger.Info("reusing existing core infrastructure config",
			zap.String("owner", coreCfg.Owner.Hex()),
			zap.String("defaultIsm", coreCfg.DefaultIsm.Type))
		mode = Reuse(coreCfg)
	}

	outputs := make(runner.Output)

	o.logger.Info("starting core infrastructure setup", zap.Bool("advanced", req.Advanced))
	infra, err := o.runner.RunBatch(ctx, o.infraCommands(mode))
	if err != nil {
		return Result{Status: 1}, fmt.Errorf("infrastructure setup: %w", err)
	}
	merge(outputs, infra)

	route, err := hyperlane.ParseWarpRouteConfig(req.WarpConfig)
	if err != nil {
		return Result{Status: 1, Outputs: outputs}, &ConfigInvalidError{Doc: "warp route config", Err: err}
	}
	o.logger.Info("warp route config parsed", zap.Int("chains", len(route.Chains)))

	if o.shouldDeploy(route) {
		warp, err := o.runner.RunBatch(ctx, []runner.Command{
			{Name: "warp deploy", Command: fmt.Sprintf("%s warp deploy", o.binary)},
		})
		if err != nil {
			return Result{Status: 1, Outputs: outputs}, fmt.Errorf("warp deployment: %w", err)
		}
		merge(outputs, warp)
	}

	for _, chain := range o.chains {
		if err := o.reconcileChain(ctx, chain, outputs); err != nil {
			return Result{Status: 1, Outputs: outputs}, err
		}
	}

	o.logger.Info("warp route deployment complete", zap.Int("steps", len(outputs)))
	return Result{Status: 0, Outputs: outputs}, nil
}

// infraCommands is the core infrastructure batch. The init step always runs
// the advanced variant; reuse only drops the template seeding, the deploy
// still executes.
func (o *Orchestrator) infraCommands(mode InfraMode) []runner.Command {
	init := fmt.Sprintf("%s core init --advanced", o.binary)
	if _, reuse := mode.Existing(); !reuse {
		// fresh deployments are seeded from the bundled template
		init = fmt.Sprintf("%s --config %s", init, coreTemplatePath)
	}
	return []runner.Command{
		{Name: "registry init", Command: fmt.Sprintf("%s registry init", o.binary)},
		{Name: "core init", Command: init},
		{Name: "core deploy", Command: fmt.Sprintf("%s core deploy", o.binary)},
	}
}

// shouldDeploy decides whether this operator instance executes the warp
// deployment. Every instance currently deploys.
func (o *Orchestrator) shouldDeploy(hyperlane.WarpRouteConfig) bool {
	return true
}

// reconcileChain reads the chain's on-chain core config and re-applies it.
// The apply command cannot be built until the read output is captured: the
// captured text is embedded verbatim as the --input argument.
func (o *Orchestrator) reconcileChain(ctx context.Context, chain string, outputs runner.Output) error {
	readName := fmt.Sprintf("core read --chain %s", chain)
	read, err := o.runner.RunBatch(ctx, []runner.Command{
		{Name: readName, Command: fmt.Sprintf("%s core read --chain %s", o.binary, chain)},
	})
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", chain, err)
	}
	onChain := read[readName]
	outputs[readName] = onChain

	applyName := fmt.Sprintf("core apply --chain %s", chain)
	apply, err := o.runner.RunBatch(ctx, []runner.Command{
		{Name: applyName, Command: fmt.Sprintf("%s core apply --chain %s --input '%s'", o.binary, chain, onChain)},
	})
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", chain, err)
	}
	outputs[applyName] = apply[applyName]

	o.logger.Info("chain core config reconciled", zap.String("chain", chain))
	return nil
}

func merge(dst, src runner.Output) {
	for name, out := range src {
		dst[name] = out
	}
}

// deployerAddress derives the EVM address of the deployer signing key.
func deployerAddress(hexKey string) (string, error) {
	k := hexKey
	if len(k) >= 2 && (k[:2] == "0x" || k[:2] == "0X") {
		k = k[2:]
	}
	b, err := hex.DecodeString(strings.TrimSpace(k))
	if err != nil {
		return "", fmt.Errorf("decode privkey: %w", err)
	}
	priv, err := gethcrypto.ToECDSA(b)
	if err != nil {
		return "", fmt.Errorf("to ecdsa: %w", err)
	}
	pub := priv.Public().(*ecdsa.PublicKey)
	return gethcrypto.PubkeyToAddress(*pub).Hex(), nil
}
