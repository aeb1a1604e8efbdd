package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kvasey/chorus/internal/agent"
	"github.com/kvasey/chorus/internal/agents"
	"github.com/kvasey/chorus/internal/config"
	chexec "github.com/kvasey/chorus/internal/exec"
	"github.com/kvasey/chorus/internal/oracle"
	"github.com/kvasey/chorus/internal/orchestrator"
	"github.com/kvasey/chorus/internal/usage"
	"github.com/kvasey/chorus/pkg/models"
)

// engine bundles everything a command needs to run queries. The
// orchestrator and registry can be swapped by Reload while the TUI is
// running, so access goes through the mutex.
type engine struct {
	cfg    *config.Config
	client oracle.Completer
	store  *usage.Store
	logger *orchestrator.DebugLogger

	mu           sync.RWMutex
	orch         *orchestrator.Orchestrator
	registry     *agent.Registry
	agentClosers []func() error
}

// Run executes one query through the current orchestrator.
func (e *engine) Run(ctx context.Context, query string, reqContext map[string]any) (models.Result, error) {
	e.mu.RLock()
	orch := e.orch
	e.mu.RUnlock()
	return orch.Run(ctx, query, reqContext)
}

// Events returns the current orchestrator's event stream.
func (e *engine) Events() <-chan orchestrator.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orch.Events()
}

// Agents returns the current registry.
func (e *engine) Agents() *agent.Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry
}

// Reload rebuilds the registry and orchestrator from a changed agent
// manifest. The previous agent stores are closed after the swap. On
// error the engine keeps running with the previous registry.
func (e *engine) Reload(manifest *config.AgentManifest) error {
	registry, closers, err := buildRegistry(e.cfg, manifest)
	if err != nil {
		return err
	}

	orch, err := e.newOrchestrator(registry)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return err
	}

	e.mu.Lock()
	oldClosers := e.agentClosers
	e.orch = orch
	e.registry = registry
	e.agentClosers = closers
	e.mu.Unlock()

	for _, c := range oldClosers {
		c()
	}
	return nil
}

// Close releases agent stores, the usage database, and the debug log.
func (e *engine) Close() {
	e.mu.Lock()
	closers := e.agentClosers
	e.agentClosers = nil
	e.mu.Unlock()

	for _, c := range closers {
		c()
	}
	if e.store != nil {
		e.store.Close()
	}
	if e.logger != nil {
		e.logger.Close()
	}
}

// newOrchestrator builds an orchestrator over the given registry using
// the engine's oracle, sink, logger, and tuning knobs.
func (e *engine) newOrchestrator(registry *agent.Registry) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(
		orchestrator.RequiredConfig{Registry: registry, Oracle: e.client},
		orchestrator.WithRunDeadline(e.cfg.Orchestrator.RunDeadline),
		orchestrator.WithAgentTimeout(e.cfg.Orchestrator.AgentTimeout),
		orchestrator.WithConcurrencyCeiling(e.cfg.Orchestrator.ConcurrencyCeiling),
		orchestrator.WithFallbackCap(e.cfg.Orchestrator.FallbackCap),
		orchestrator.WithEventBuffer(e.cfg.Orchestrator.EventBuffer),
		orchestrator.WithSink(e.store),
		orchestrator.WithLogger(e.logger),
	)
}

// manifestPath returns the agent manifest location next to the user
// config file.
func manifestPath() string {
	return filepath.Join(filepath.Dir(config.GetUserConfigPath()), "agents.yaml")
}

// buildEngine wires the oracle, the built-in agents, and the
// orchestrator from the loaded configuration and agent manifest.
func buildEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var apiKey string
	if !cfg.Anthropic.UseBedrock {
		key, _, err := config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve API key: %w (set ANTHROPIC_API_KEY or run 'chorus config set anthropic.api_key')", err)
		}
		if err := config.ValidateAPIKey(key); err != nil {
			return nil, err
		}
		apiKey = key
	}

	client, err := oracle.NewAnthropicClient(oracle.AnthropicConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create oracle: %w", err)
	}

	logger, err := orchestrator.NewDebugLogger(cfg.Logging.DebugLog)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	manifest, err := config.LoadManifest(manifestPath())
	if err != nil {
		logger.Close()
		return nil, err
	}

	registry, closers, err := buildRegistry(cfg, manifest)
	if err != nil {
		logger.Close()
		return nil, err
	}

	e := &engine{
		cfg:          cfg,
		client:       client,
		logger:       logger,
		registry:     registry,
		agentClosers: closers,
	}

	store, err := usage.OpenStore(cfg.Storage.UsageDB)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open usage store: %w", err)
	}
	e.store = store

	orch, err := e.newOrchestrator(registry)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	e.orch = orch

	return e, nil
}

// stockPriorities maps each built-in agent to its default ordering.
var stockPriorities = map[string]agent.Priority{
	"table": agent.PriorityDataAnalysis,
	"docs":  agent.PriorityKnowledgeRetrieval,
	"tool":  agent.PriorityGenericTool,
	"files": agent.PriorityGenericTool,
}

// buildRegistry instantiates the manifest's enabled agents and
// registers them at their configured or stock priority. The returned
// closers release the agents' sqlite stores.
func buildRegistry(cfg *config.Config, manifest *config.AgentManifest) (*agent.Registry, []func() error, error) {
	builder := agent.NewRegistryBuilder()
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	workDir := cfg.Tools.WorkDir
	if workDir == "" {
		workDir = "."
	}

	for _, entry := range manifest.Enabled() {
		var (
			a   agent.Agent
			err error
		)
		switch entry.Name {
		case "docs":
			docs, derr := agents.NewDocsAgent(cfg.Storage.DocsDB)
			if derr == nil {
				closers = append(closers, docs.Close)
			}
			a, err = docs, derr
		case "table":
			table, terr := agents.NewTableAgent(cfg.Storage.RecordsDB)
			if terr == nil {
				closers = append(closers, table.Close)
			}
			a, err = table, terr
		case "tool":
			a = agents.NewToolAgent(chexec.NewRunner(), workDir, toolCommands(entry))
		case "files":
			a, err = agents.NewFilesAgent(workDir)
		default:
			err = fmt.Errorf("unknown agent %q in manifest", entry.Name)
		}
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("create %s agent: %w", entry.Name, err)
		}

		priority := stockPriorities[entry.Name]
		if entry.Priority != 0 {
			priority = agent.Priority(entry.Priority)
		}
		builder.Register(a, priority)
	}

	registry, err := builder.Build()
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if registry.Len() == 0 {
		closeAll()
		return nil, nil, fmt.Errorf("no agents enabled in manifest")
	}
	return registry, closers, nil
}

// toolCommands converts manifest command overrides to the tool agent's
// whitelist type. Nil means use the stock whitelist.
func toolCommands(entry config.AgentEntry) []agents.ToolCommand {
	if len(entry.Commands) == 0 {
		return nil
	}
	out := make([]agents.ToolCommand, len(entry.Commands))
	for i, c := range entry.Commands {
		out[i] = agents.ToolCommand{Name: c.Name, Argv: c.Argv}
	}
	return out
}
