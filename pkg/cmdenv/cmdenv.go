// Package cmdenv assembles what a running speakmcp command needs from its
// flags: the effective config, a logger, an API client, the turn journal and
// the output writers.
package cmdenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/speakmcp/speakmcp-cli/pkg/api"
	"github.com/speakmcp/speakmcp-cli/pkg/chat"
	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
	"github.com/speakmcp/speakmcp-cli/pkg/journal"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// Persistent flag names registered on the root command.
const (
	FlagDebug      = "debug"
	FlagConfigDir  = "config-dir"
	FlagJSON       = "json"
	FlagLogFile    = "log-file"
	FlagDumpStream = "dump-stream"
)

// Env is the per-invocation command environment.
type Env struct {
	Config    *config.Config
	Logger    *slog.Logger
	ConfigDir string
	JSON      bool

	Out io.Writer
	Err io.Writer

	dumpPath string
	journal  *journal.Journal
	closers  []io.Closer
}

// Load resolves the environment for cmd. The caller must Close it.
func Load(cmd *cobra.Command) (*Env, error) {
	cfg, err := config.LoadForCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	debug, _ := flags.GetBool(FlagDebug)
	jsonOut, _ := flags.GetBool(FlagJSON)
	configDir, _ := flags.GetString(FlagConfigDir)
	logFile, _ := flags.GetString(FlagLogFile)
	dumpPath, _ := flags.GetString(FlagDumpStream)

	cliui.SetColor(cfg.Output.Colored)

	env := &Env{
		Config:    cfg,
		ConfigDir: configDir,
		JSON:      jsonOut,
		Out:       cmd.OutOrStdout(),
		Err:       cmd.ErrOrStderr(),
		dumpPath:  dumpPath,
	}

	env.Logger = logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(cliui.IsTerminal(os.Stderr)),
		logger.WithWriter(env.Err),
	)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		env.closers = append(env.closers, f)

		// The file always gets debug records, as JSON.
		fileLogger := logger.New(logger.WithDebug(true), logger.WithJSON(true), logger.WithWriter(f))
		env.Logger = logger.Multi(env.Logger, fileLogger)
	}

	env.Logger.Debug("config loaded",
		"server", cfg.Server.URL,
		"api_key", cfg.Server.APIKey,
		"stream", cfg.Chat.Stream,
	)

	return env, nil
}

// Client returns an API client for the effective config. It fails with
// api.ErrAPIKeyMissing when no key is configured. When --dump-stream is set
// the raw SSE bodies are appended to that file.
func (e *Env) Client() (*api.Client, error) {
	client, err := api.NewFromConfig(e.Config, e.Logger)
	if err != nil {
		return nil, err
	}

	if e.dumpPath != "" {
		f, err := os.OpenFile(e.dumpPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening stream dump: %w", err)
		}
		e.closers = append(e.closers, f)
		client.SetDump(f)
	}

	return client, nil
}

// Journal opens the turn journal for recording, or returns nil when it is
// disabled.
func (e *Env) Journal(ctx context.Context) (*journal.Journal, error) {
	if !e.Config.Journal.Enabled {
		return nil, nil
	}
	return e.OpenJournal(ctx)
}

// OpenJournal opens the turn journal whether or not recording is enabled.
// The journal is opened once per Env.
func (e *Env) OpenJournal(ctx context.Context) (*journal.Journal, error) {
	if e.journal != nil {
		return e.journal, nil
	}

	path, err := e.JournalPath()
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(ctx, path, e.Logger)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, j)
	e.journal = j
	return j, nil
}

// Runner builds a chat runner that prints to the command's writers and
// records completed turns. A journal that cannot be opened is skipped with
// a warning.
func (e *Env) Runner(ctx context.Context, stream bool) (*chat.Runner, error) {
	client, err := e.Client()
	if err != nil {
		return nil, err
	}

	j, err := e.Journal(ctx)
	if err != nil {
		e.Logger.Warn("journal unavailable, turns will not be recorded", "error", err)
		j = nil
	}

	return chat.NewRunner(client, chat.Options{
		Stream:        stream,
		ShowToolCalls: e.Config.Chat.ShowToolCalls,
		Markdown:      e.Config.Output.Markdown,
		Out:           e.Out,
		Err:           e.Err,
		Recorder:      chat.NewRecorder(j, e.ConfigDir, e.Config.Server.URL, e.Logger),
		Logger:        e.Logger,
	}), nil
}

// Reload re-reads the effective config for cmd.
func (e *Env) Reload(cmd *cobra.Command) error {
	cfg, err := config.LoadForCommand(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	e.Config = cfg
	cliui.SetColor(cfg.Output.Colored)
	return nil
}

// ConfigPath is the cli.toml path for this invocation, creating the
// speakmcp directory if needed.
func (e *Env) ConfigPath() (string, error) {
	dir, err := dotdir.NewManager().Target(e.ConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.FileName), nil
}

// JournalPath is journal.path from config, or journal.db inside the
// speakmcp directory.
func (e *Env) JournalPath() (string, error) {
	if e.Config.Journal.Path != "" {
		return e.Config.Journal.Path, nil
	}

	dir, err := dotdir.NewManager().Target(e.ConfigDir)
	if err != nil {
		return "", err
	}
	return journal.DefaultPath(dir), nil
}

// Render prints v as JSON when --json is set, otherwise as a table built
// by rows.
func (e *Env) Render(v any, headers []string, rows func() [][]string) error {
	if e.JSON {
		return cliui.PrintJSON(e.Out, v)
	}
	return cliui.Table(e.Out, headers, rows())
}

// Close releases files and databases opened for the command.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Context returns the command's context, or a background one.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Run loads the environment for cmd, calls fn and closes it again. It is the
// common RunE body of server-facing commands.
func Run(cmd *cobra.Command, fn func(ctx context.Context, env *Env) error) error {
	env, err := Load(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			env.Logger.Debug("closing command resources", "error", cerr)
		}
	}()

	return fn(Context(cmd), env)
}

// WithClient is Run for commands that only need the API client.
func WithClient(cmd *cobra.Command, fn func(ctx context.Context, env *Env, client *api.Client) error) error {
	return Run(cmd, func(ctx context.Context, env *Env) error {
		client, err := env.Client()
		if err != nil {
			return err
		}
		return fn(ctx, env, client)
	})
}
