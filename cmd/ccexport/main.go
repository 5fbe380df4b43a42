// ccexport writes every CC_ component of a glTF scene as its own GLB file,
// in a folder tree that mirrors the scene's CCC_ containers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Faultbox/ccexport/internal/config"
	"github.com/Faultbox/ccexport/internal/exporter"
	"github.com/Faultbox/ccexport/internal/logger"
	"github.com/Faultbox/ccexport/internal/report"
	"github.com/Faultbox/ccexport/internal/watch"
	"github.com/Faultbox/ccexport/pkg/gltfscene"
	"github.com/Faultbox/ccexport/pkg/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command, rest := args[0], args[1:]
	switch command {
	case "export", "x":
		return cmdExport(ctx, rest, stdout, stderr)
	case "plan":
		return cmdPlan(ctx, rest, stdout, stderr)
	case "ids":
		return cmdIDs(rest, stdout, stderr)
	case "watch":
		return cmdWatch(ctx, rest, stdout, stderr)
	case "init-config":
		return cmdInitConfig(rest, stdout, stderr)
	case "propagate-shape-keys":
		report.New(stdout).Infof("Propagate Shape Keys is a placeholder (no action implemented).")
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ccexport - export CC_/CCC_ structured scenes into a folder tree of GLBs

Usage:
  ccexport <command> [options] <scene.gltf|scene.glb>

Commands:
  export                  Export every CC_ component as its own GLB
  plan                    Show the files an export would write
  ids                     Assign missing CC_id values and save the scene
  watch                   Export, then export again whenever the scene changes
  init-config [path]      Write the default config (default ./ccexport.yaml)
  propagate-shape-keys    Placeholder, does nothing

Options:
  --config <file>         Config file (default ./ccexport.yaml)
  --out <dir>             Export path; "//" is relative to the scene file
  --no-root-folder        Do not add the character_config folder
  --keep                  Do not delete the destination first
  --trash                 Move the old destination to the trash
  --permissive            Accept any top-level objects
  --no-persist-ids        Do not save assigned ids back into the scene
  --debug                 Debug logging

Examples:
  ccexport export character.glb
  ccexport plan --out ./build character.gltf
  ccexport watch --keep --trash character.glb`)
}

// setup parses flags, loads config and starts logging. It returns the scene
// path from the remaining arguments.
func setup(name string, args []string, stderr io.Writer) (*config.Config, string, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, "", false
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(stderr, "Usage: ccexport %s [options] <scene.gltf|scene.glb>\n", name)
		return nil, "", false
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, "", false
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, "", false
	}
	return cfg, fs.Arg(0), true
}

func options(cfg *config.Config, scenePath string) (exporter.Options, error) {
	root, err := cfg.ResolveExportPath(scenePath)
	if err != nil {
		return exporter.Options{}, err
	}
	return exporter.Options{
		Root:              root,
		AddRootFolder:     cfg.Export.AddRootFolder,
		DeleteAndRecreate: cfg.Export.DeleteAndRecreate,
		Trash:             cfg.Export.DeleteMode == config.DeleteTrash,
		Mode:              cfg.PlanMode(),
		IDs:               scene.NewShortID,
	}, nil
}

func cmdExport(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, scenePath, ok := setup("export", args, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	res := exportOnce(ctx, cfg, scenePath, report.New(stdout))
	if res == nil || res.Status != exporter.StatusFinished {
		return 1
	}
	return 0
}

// exportOnce loads the scene, runs the export, reports the outcome and
// persists new ids. A nil result means the scene could not be loaded.
func exportOnce(ctx context.Context, cfg *config.Config, scenePath string, rep *report.Reporter) *exporter.Result {
	doc, err := gltfscene.Load(scenePath)
	if err != nil {
		rep.Errorf("Failed to load scene: %v", err)
		return nil
	}
	opts, err := options(cfg, scenePath)
	if err != nil {
		rep.Errorf("Invalid export path: %v", err)
		return nil
	}

	res := exporter.Run(ctx, doc.Scene, doc, opts)
	if res.Plan != nil {
		for _, n := range res.Plan.Unwalked {
			rep.Warnf("Nested component %s is not exported (its parent is a component)", n.Name)
		}
	}
	for _, f := range res.Failed {
		rep.Errorf("Export failed for %s: %v", f.Unit, f.Err)
	}
	rep.Report(res.Level, "%s", res.Message)

	if res.IDsAssigned > 0 && cfg.Export.PersistIDs {
		persistIDs(doc, scenePath, rep)
	}
	return res
}

func persistIDs(doc *gltfscene.Document, scenePath string, rep *report.Reporter) {
	if doc.SyncIDs() == 0 {
		return
	}
	if err := doc.Save(scenePath); err != nil {
		rep.Errorf("Failed to save ids into %s: %v", scenePath, err)
	}
}

func cmdPlan(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, scenePath, ok := setup("plan", args, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	rep := report.New(stderr)
	doc, err := gltfscene.Load(scenePath)
	if err != nil {
		rep.Errorf("Failed to load scene: %v", err)
		return 1
	}
	opts, err := options(cfg, scenePath)
	if err != nil {
		rep.Errorf("Invalid export path: %v", err)
		return 1
	}
	opts.DryRun = true
	if !cfg.Export.PersistIDs {
		// Ids made up here would not match the ones export generates.
		opts.IDs = func() string { return "<new>" }
	}

	res := exporter.Run(ctx, doc.Scene, doc, opts)
	if res.Status != exporter.StatusFinished {
		rep.Report(res.Level, "%s", res.Message)
		return 1
	}
	if res.IDsAssigned > 0 && cfg.Export.PersistIDs {
		persistIDs(doc, scenePath, rep)
	}
	for _, job := range res.Plan.Jobs {
		fmt.Fprintf(stdout, "%s\t(%d objects)\n", job.File, len(job.Set))
	}
	for _, n := range res.Plan.Skipped {
		rep.Infof("Skipping non-CC_/CCC_ top-level: %s", n.Name)
	}
	for _, n := range res.Plan.Orphans {
		rep.Infof("Ignoring non-prefixed child under CCC_: %s", n.Name)
	}
	for _, n := range res.Plan.Unwalked {
		rep.Warnf("Nested component %s is not exported (its parent is a component)", n.Name)
	}
	rep.Report(res.Level, "%s", res.Message)
	return 0
}

func cmdIDs(args []string, stdout, stderr io.Writer) int {
	_, scenePath, ok := setup("ids", args, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	rep := report.New(stdout)
	doc, err := gltfscene.Load(scenePath)
	if err != nil {
		rep.Errorf("Failed to load scene: %v", err)
		return 1
	}

	assigned := scene.AssignIDs(doc.Scene.Objects, scene.NewShortID)
	if assigned == 0 {
		rep.Infof("All CC_/CCC_ objects already have ids.")
		return 0
	}
	doc.SyncIDs()
	if err := doc.Save(scenePath); err != nil {
		rep.Errorf("Failed to save %s: %v", scenePath, err)
		return 1
	}
	rep.Infof("Assigned %d id(s) in %s.", assigned, scenePath)
	return 0
}

func cmdWatch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, scenePath, ok := setup("watch", args, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	rep := report.New(stdout)
	exportOnce(ctx, cfg, scenePath, rep)

	err := watch.Watch(ctx, scenePath, watch.DefaultDebounce, func() {
		exportOnce(ctx, cfg, scenePath, rep)
	})
	if err != nil {
		rep.Errorf("Watch failed: %v", err)
		return 1
	}
	return 0
}

func cmdInitConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.Bool("user", false, "Write to the user config directory")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	path := config.FileName
	switch {
	case *user:
		path = config.UserConfigPath()
	case fs.NArg() > 0:
		path = fs.Arg(0)
	}

	rep := report.New(stdout)
	if _, err := os.Stat(path); err == nil && !*force {
		rep.Errorf("%s already exists (use --force to overwrite)", path)
		return 1
	}
	if err := config.Default().SaveTo(path); err != nil {
		rep.Errorf("Failed to write %s: %v", path, err)
		return 1
	}
	rep.Infof("Wrote default config to %s.", path)
	return 0
}
