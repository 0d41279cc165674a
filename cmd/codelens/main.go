// Command codelens is the CLI adapter over the core Service, per
// spec.md §4.11/§6: it parses argv into a service.AnalyzeRequest,
// encodes the Response in the requested format, and maps the error
// taxonomy to an exit code. Grounded on the teacher's cmd/lci/main.go
// urfave/cli.App wiring: one top-level App, one *cli.Command per verb,
// global flags read in every Action via the cli.Context.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/codelens/internal/artifact"
	"github.com/standardbeagle/codelens/internal/config"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/httpapi"
	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/mcp"
	"github.com/standardbeagle/codelens/internal/service"
	"github.com/standardbeagle/codelens/internal/types"
)

// outDirFlag is shared by every command that can persist its result as
// a durable artifact instead of (or alongside) stdout, per spec.md §6's
// artifact output layout (mermaid/, reports/, templates/, manifest.json).
var outDirFlag = &cli.StringFlag{Name: "out-dir", Usage: "Also write the result as an artifact under this directory, with a manifest.json"}

// writeArtifact persists result under outDir via artifact.Writer and
// flushes its manifest. op becomes the artifact's filename; the dag
// command's result (a Mermaid diagram string) is written raw under
// mermaid/, everything else is JSON-encoded under reports/.
func writeArtifact(outDir, op string, result interface{}) error {
	w, err := artifact.NewWriter(outDir)
	if err != nil {
		return cerrors.IoError("write_artifact", err)
	}

	if diagram, ok := result.(string); ok {
		if _, err := w.Write(op+".mmd", types.ArtifactMermaid, []byte(diagram)); err != nil {
			return cerrors.IoError("write_artifact", err)
		}
	} else {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return cerrors.Internal("write_artifact", "marshal", err)
		}
		if _, err := w.Write(op+".json", types.ArtifactJSON, data); err != nil {
			return cerrors.IoError("write_artifact", err)
		}
	}

	if err := w.Flush(); err != nil {
		return cerrors.IoError("write_artifact", err)
	}
	return nil
}

// Exit codes from spec.md §6.
const (
	exitOK               = 0
	exitGeneric          = 1
	exitInvalidArgs      = 2
	exitNotFound         = 3
	exitValidationFailed = 4
	exitTimeout          = 5
	exitIoError          = 6
)

func exitCodeFor(err error) int {
	ce, ok := err.(*cerrors.CodelensError)
	if !ok {
		return exitGeneric
	}
	switch ce.Kind {
	case cerrors.KindInvalidRequest:
		return exitInvalidArgs
	case cerrors.KindNotFound:
		return exitNotFound
	case cerrors.KindValidationFailed:
		return exitValidationFailed
	case cerrors.KindTimeout:
		return exitTimeout
	case cerrors.KindIoError:
		return exitIoError
	default:
		return exitGeneric
	}
}

func newLogger(c *cli.Context) *logging.Logger {
	level := logging.ParseLevel(os.Getenv("CODELENS_LOG_LEVEL"))
	if c.Bool("verbose") {
		level = logging.LevelDebug
	}
	stdio := c.String("mode") == "mcp"
	return logging.New(stdio, level)
}

// writeOutput encodes data in the format named by --format. json is the
// default and always available; yaml uses the same gopkg.in/yaml.v3
// dependency testify already pulls in transitively. markdown, sarif,
// csv, and table are not implemented — analyzer results are
// heterogeneous nested structs with no single tabular or SARIF-rule
// shape across analyze_complexity/analyze_churn/.../analyze_deep_context,
// so those formats are left off the supported list rather than emitted
// half-correctly.
func writeOutput(c *cli.Context, data interface{}) error {
	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cerrors.IoError("write_output", err)
		}
		defer f.Close()
		out = f
	}

	switch format := c.String("format"); format {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return cerrors.InvalidRequest("write_output", fmt.Errorf("unsupported --format %q, want json or yaml", format))
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, cerrors.InvalidRequest("load_config", err)
	}
	return cfg, nil
}

func analyzeRequest(c *cli.Context) (service.AnalyzeRequest, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return service.AnalyzeRequest{}, err
	}
	return service.AnalyzeRequest{
		WorkspaceRoot: c.Args().First(),
		Config:        cfg,
		HotspotLimit:  c.Int("hotspot-limit"),
	}, nil
}

func runAnalyze(op string, fn func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().First() == "" {
			return cerrors.InvalidRequest(op, fmt.Errorf("workspace root argument is required"))
		}
		log := newLogger(c)
		defer log.Close()
		svc := service.New(log)

		req, err := analyzeRequest(c)
		if err != nil {
			return err
		}
		result, err := fn(c.Context, svc, req)
		if err != nil {
			return err
		}
		if outDir := c.String("out-dir"); outDir != "" {
			if err := writeArtifact(outDir, op, result); err != nil {
				return err
			}
		}
		return writeOutput(c, result)
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run a single analysis over a workspace",
		Flags: []cli.Flag{outDirFlag},
		Subcommands: []*cli.Command{
			{
				Name:      "complexity",
				Usage:     "Cyclomatic/cognitive complexity and hotspots",
				ArgsUsage: "<workspace-root>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "hotspot-limit", Value: 25, Usage: "Max hotspots to report"},
				},
				Action: runAnalyze("analyze_complexity", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeComplexity(ctx, req)
				}),
			},
			{
				Name:      "churn",
				Usage:     "Git churn per file",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_churn", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeChurn(ctx, req)
				}),
			},
			{
				Name:      "dag",
				Usage:     "Module import graph as a Mermaid diagram",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_dag", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeDAG(ctx, req)
				}),
			},
			{
				Name:      "dead-code",
				Usage:     "Symbols unreachable from any entry point",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_dead_code", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeDeadCode(ctx, req)
				}),
			},
			{
				Name:      "satd",
				Usage:     "Self-admitted technical debt comments",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_satd", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeSATD(ctx, req)
				}),
			},
			{
				Name:      "duplicates",
				Usage:     "Near-duplicate code fragments",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_duplicates", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeDuplicates(ctx, req)
				}),
			},
			{
				Name:      "tdg",
				Usage:     "Fused technical-debt-gradient defect ranking",
				ArgsUsage: "<workspace-root>",
				Action: runAnalyze("analyze_tdg", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
					return svc.AnalyzeTDG(ctx, req)
				}),
			},
		},
	}
}

func contextCommand() *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "Run every analysis and fuse a deep-context report",
		ArgsUsage: "<workspace-root>",
		Flags:     []cli.Flag{outDirFlag},
		Action: runAnalyze("analyze_deep_context", func(ctx context.Context, svc service.Service, req service.AnalyzeRequest) (interface{}, error) {
			return svc.AnalyzeDeepContext(ctx, req)
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List available scaffold templates",
		Action: func(c *cli.Context) error {
			log := newLogger(c)
			defer log.Close()
			svc := service.New(log)
			templates, err := svc.ListTemplates(c.Context)
			if err != nil {
				return err
			}
			return writeOutput(c, templates)
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Resolve a scaffold template by id",
		ArgsUsage: "<template-id>",
		Flags:     []cli.Flag{outDirFlag},
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return cerrors.InvalidRequest("generate_template", fmt.Errorf("template id argument is required"))
			}
			log := newLogger(c)
			defer log.Close()
			svc := service.New(log)
			tpl, err := svc.GenerateTemplate(c.Context, id)
			if err != nil {
				return err
			}
			if outDir := c.String("out-dir"); outDir != "" {
				w, err := artifact.NewWriter(outDir)
				if err != nil {
					return cerrors.IoError("generate_template", err)
				}
				data, err := json.MarshalIndent(tpl, "", "  ")
				if err != nil {
					return cerrors.Internal("generate_template", "marshal", err)
				}
				if _, err := w.Write(tpl.ID+".json", types.ArtifactTemplate, data); err != nil {
					return cerrors.IoError("generate_template", err)
				}
				if err := w.Flush(); err != nil {
					return cerrors.IoError("generate_template", err)
				}
			}
			return writeOutput(c, tpl)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the JSON-RPC/MCP (stdio) or HTTP adapter",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "HTTP bind host (--mode http only)"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP bind port (--mode http only)"},
			&cli.BoolFlag{Name: "watch", Usage: "Invalidate a workspace's cached parse as soon as a file under it changes"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := newLogger(c)
			defer log.Close()
			svc := service.New(log)
			svc.Watch = c.Bool("watch")
			defer svc.Close()

			switch c.String("mode") {
			case "http":
				httpSrv := httpapi.NewServer(svc, httpapi.Config{Host: c.String("host"), Port: c.Int("port")}, log)
				return httpSrv.ListenAndServe(ctx)
			default:
				mcpSrv := mcp.NewServer(svc, log)
				return mcpSrv.Run(ctx)
			}
		},
	}
}

func diagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "Print the effective configuration and log file path",
		Action: func(c *cli.Context) error {
			log := newLogger(c)
			defer log.Close()
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			snapshot, err := config.SnapshotTOML(cfg)
			if err != nil {
				return cerrors.Internal("diagnose", "toml_snapshot", err)
			}
			snapshotDir := filepath.Join(cfg.Project.Root, ".codelens")
			snapshotPath := filepath.Join(snapshotDir, "config.snapshot.toml")
			if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
				return cerrors.IoError("diagnose", err)
			}
			if err := os.WriteFile(snapshotPath, snapshot, 0o644); err != nil {
				return cerrors.IoError("diagnose", err)
			}

			return writeOutput(c, map[string]interface{}{
				"config":        cfg,
				"log_path":      log.LogPath(),
				"snapshot_path": snapshotPath,
			})
		},
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "codelens",
		Usage: "Multi-language code intelligence: complexity, churn, clones, dead code, SATD, dependency graph, deep context",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: "cli", Usage: "Adapter mode: cli, mcp, http"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
			&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json, yaml"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write output to this path instead of stdout"},
			&cli.StringFlag{Name: "config", Usage: "Path to a .codelens.kdl or .codelens.toml config file"},
		},
		Commands: []*cli.Command{
			listCommand(),
			generateCommand(),
			analyzeCommand(),
			contextCommand(),
			serveCommand(),
			diagnoseCommand(),
		},
	}
}

func main() {
	if err := app().RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "codelens:", err)
		os.Exit(exitCodeFor(err))
	}
	os.Exit(exitOK)
}
