// Command execution for CLI commands.
//
// Information Hiding:
// - Settings loading and service construction hidden
// - Audit store lifecycle hidden
// - Output formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinex/modelgate/agent"
	"github.com/richinex/modelgate/config"
	"github.com/richinex/modelgate/gateway"
	"github.com/richinex/modelgate/llm"
	"github.com/richinex/modelgate/observe"
	"github.com/richinex/modelgate/review"
	"github.com/richinex/modelgate/server"
	"github.com/richinex/modelgate/storage"
)

// ErrAuditDisabled is returned by Runs when no audit database is configured.
var ErrAuditDisabled = errors.New("audit log disabled: AUDIT_DB is not set")

// Options holds CLI execution options.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Runner executes CLI commands against a gateway service.
type Runner struct {
	settings config.Settings
	svc      *gateway.Service
	obs      *observe.Observer
	audit    *storage.SqliteStorage
	out      io.Writer
}

// NewRunner loads settings and builds the service. Logs go to errOut,
// command results to out.
func NewRunner(opts Options, out, errOut io.Writer) (*Runner, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	obs := observe.FromFormat(errOut, settings.Log.Format, opts.Verbose || settings.Log.Verbose())

	r := &Runner{settings: settings, obs: obs, out: out}

	var svcOpts []gateway.Option
	if settings.AuditDB != "" {
		store, err := storage.OpenSqlite(settings.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		r.audit = store
		svcOpts = append(svcOpts, gateway.WithAudit(store))
	}

	r.svc = gateway.New(settings, obs, svcOpts...)
	return r, nil
}

// Close releases the audit store, if any.
func (r *Runner) Close() error {
	if r.audit != nil {
		return r.audit.Close()
	}
	return nil
}

// Chat sends a single prompt and prints the result.
func (r *Runner) Chat(ctx context.Context, req llm.ChatRequest) error {
	result, err := r.svc.Chat(ctx, req)
	if err != nil {
		return err
	}
	return r.printJSON(result)
}

// Embed prints one vector per input.
func (r *Runner) Embed(ctx context.Context, req llm.EmbeddingRequest) error {
	result, err := r.svc.Embeddings(ctx, req)
	if err != nil {
		return err
	}
	return r.printJSON(result)
}

// Models prints the static catalog of a provider.
func (r *Runner) Models(provider string) error {
	models, err := r.svc.ListModels(provider)
	if err != nil {
		return err
	}
	return r.printJSON(map[string]any{"models": models})
}

// Agent performs one agent run and prints the run record.
func (r *Runner) Agent(ctx context.Context, req agent.Request) error {
	run, err := r.svc.RunAgent(ctx, req)
	if err != nil {
		return err
	}
	return r.printJSON(run)
}

// Review reviews the code in path. Filename defaults to the path and
// language to the file extension.
func (r *Runner) Review(ctx context.Context, path string, req review.Request) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	req.Code = string(code)
	if req.Filename == "" {
		req.Filename = path
	}
	if req.Language == "" {
		req.Language = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	result, err := r.svc.Review(ctx, req)
	if err != nil {
		return err
	}
	return r.printJSON(result)
}

// Tools lists the tool catalog. Parameters are shown when verbose is set.
func (r *Runner) Tools(verbose bool) {
	fmt.Fprintln(r.out, "Available tools:")
	fmt.Fprintln(r.out)

	for _, meta := range r.svc.Tools() {
		fmt.Fprintf(r.out, "  %s\n", meta.Name)
		fmt.Fprintf(r.out, "    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Fprintln(r.out, "    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Fprintf(r.out, "      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Fprintln(r.out)
	}
}

// Runs prints the most recent audited agent runs.
func (r *Runner) Runs(ctx context.Context, limit int) error {
	if r.audit == nil {
		return ErrAuditDisabled
	}
	entries, err := r.audit.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	return r.printJSON(map[string]any{"runs": entries})
}

// Serve runs the HTTP server until ctx is cancelled.
func (r *Runner) Serve(ctx context.Context) error {
	srv, err := server.New(r.settings.Server, r.svc, r.obs)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func (r *Runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
