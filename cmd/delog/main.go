package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/delog/internal/config"
	"github.com/example/delog/internal/engine"
	engineopts "github.com/example/delog/internal/engine/opts"
	"github.com/example/delog/internal/output"
	"github.com/example/delog/internal/termcolor"
	"github.com/example/delog/internal/textutil"
	"github.com/example/delog/internal/util"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serveCmd(os.Args[2:])
			return
		case "restore":
			restoreCmd(os.Args[2:])
			return
		}
	}
	scanCmd(os.Args[1:])
}

// scanConfig is the parsed CLI surface before config layering.
type scanConfig struct {
	flagCfg    config.EngineConfig
	uiCfg      config.UIConfig
	write      bool
	configPath string
	progress   bool
	noProgress bool
	showHelp   bool
}

type multiValue []string

func (m *multiValue) String() string { return strings.Join(*m, ",") }

func (m *multiValue) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func parseScanArgs(args []string) (*scanConfig, error) {
	fs := flag.NewFlagSet("delog", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		receiver     = fs.String("receiver", "", "console object name (default: console)")
		methods      = fs.String("methods", "", "comma separated method allow-list (default: standard console methods)")
		paths        multiValue
		excludes     multiValue
		pathRegex    multiValue
		langs        = fs.String("langs", "", "restrict to languages (javascript, typescript, vue, svelte, astro)")
		write        = fs.Bool("write", false, "apply removals (default: dry run)")
		risky        = fs.Bool("risky", false, "also apply risky removals (expression positions)")
		noVerify     = fs.Bool("no-verify", false, "skip the post-edit parse check")
		noBackup     = fs.Bool("no-backup", false, "skip writing a backup session before edits")
		noTypical    = fs.Bool("no-exclude-typical", false, "scan node_modules, dist and other build output too")
		noPrefilter  = fs.Bool("no-prefilter", false, "skip the git grep candidate prefilter")
		maxFileBytes = fs.Int("max-file-bytes", -1, "skip files larger than N bytes (0=unlimited)")
		jobs         = fs.Int("jobs", 0, "max parallel workers")
		repo         = fs.String("repo", "", "repo root (default: current dir)")
		outputFmt    = fs.String("output", "", "table|tsv|json|csv|markdown|ndjson")
		fields       = fs.String("fields", "", "comma separated columns (location,method,class,risk,preview,replacement,applied,reason)")
		colorMode    = fs.String("color", "", "auto|always|never")
		truncate     = fs.Int("truncate", -1, "truncate previews to N columns (0=unlimited)")
		configPath   = fs.String("config", "", "explicit config file path")
		forceProg    = fs.Bool("progress", false, "force progress even when piped")
		noProg       = fs.Bool("no-progress", false, "disable progress/ETA")
	)
	fs.Var(&paths, "path", "limit scan to path (repeatable, comma separated ok)")
	fs.Var(&excludes, "exclude", "exclude pathspec (repeatable, comma separated ok)")
	fs.Var(&pathRegex, "path-regex", "keep only paths matching regexp (repeatable)")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return &scanConfig{showHelp: true}, nil
		}
		return nil, err
	}

	cfg := &scanConfig{
		write:      *write,
		configPath: *configPath,
		progress:   *forceProg,
		noProgress: *noProg,
	}

	// Only flags that were actually set become an override layer, so the
	// config file and DELOG_* environment keep their say for the rest.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["receiver"] {
		cfg.flagCfg.Receiver = receiver
	}
	if set["methods"] {
		list := engineopts.SplitMulti([]string{*methods})
		cfg.flagCfg.Methods = &list
	}
	if set["path"] {
		list := engineopts.SplitMulti(paths)
		cfg.flagCfg.Paths = &list
	}
	if set["exclude"] {
		list := engineopts.SplitMulti(excludes)
		cfg.flagCfg.Excludes = &list
	}
	if set["path-regex"] {
		list := engineopts.SplitMulti(pathRegex)
		cfg.flagCfg.PathRegex = &list
	}
	if set["langs"] {
		list := engineopts.SplitMulti([]string{*langs})
		cfg.flagCfg.DetectLangs = &list
	}
	if set["risky"] {
		cfg.flagCfg.Risky = risky
	}
	if set["no-verify"] {
		v := !*noVerify
		cfg.flagCfg.Verify = &v
	}
	if set["no-backup"] {
		v := !*noBackup
		cfg.flagCfg.Backup = &v
	}
	if set["no-exclude-typical"] {
		v := !*noTypical
		cfg.flagCfg.ExcludeTypical = &v
	}
	if set["no-prefilter"] {
		cfg.flagCfg.NoPrefilter = noPrefilter
	}
	if set["max-file-bytes"] {
		cfg.flagCfg.MaxFileBytes = maxFileBytes
	}
	if set["jobs"] {
		cfg.flagCfg.Jobs = jobs
	}
	if set["repo"] {
		cfg.flagCfg.Repo = repo
	}
	if set["output"] {
		cfg.flagCfg.Output = outputFmt
	}
	if set["color"] {
		cfg.flagCfg.Color = colorMode
	}
	if set["fields"] {
		cfg.uiCfg.Fields = fields
	}
	if set["truncate"] {
		cfg.uiCfg.Truncate = truncate
	}
	return cfg, nil
}

// resolveSettings layers defaults, config file, environment and flags.
func resolveSettings(cfg *scanConfig, getenv func(string) string) (config.EngineSettings, config.UISettings, error) {
	repoDir := "."
	if cfg.flagCfg.Repo != nil && strings.TrimSpace(*cfg.flagCfg.Repo) != "" {
		repoDir = *cfg.flagCfg.Repo
	} else if v := strings.TrimSpace(getenv("DELOG_REPO")); v != "" {
		repoDir = v
	}

	base := config.EngineSettingsFromOptions(engineopts.Defaults(repoDir))
	ui := config.DefaultUISettings()

	explicit := cfg.configPath
	if explicit == "" {
		explicit = strings.TrimSpace(getenv("DELOG_CONFIG"))
	}
	path, err := config.Find(repoDir, explicit, getenv("XDG_CONFIG_HOME"), getenv("HOME"))
	if err != nil {
		return base, ui, err
	}
	var fileCfg config.Config
	if path != "" {
		fileCfg, err = config.Load(path)
		if err != nil {
			return base, ui, err
		}
	}
	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return base, ui, err
	}

	settings := config.MergeEngine(base, fileCfg.Engine, envCfg.Engine, cfg.flagCfg)
	uiSettings := config.MergeUI(ui, fileCfg.UI, envCfg.UI, cfg.uiCfg)
	if err := settings.Validate(); err != nil {
		return settings, uiSettings, err
	}
	if err := uiSettings.Validate(); err != nil {
		return settings, uiSettings, err
	}
	return settings, uiSettings, nil
}

func scanCmd(args []string) {
	cfg, err := parseScanArgs(args)
	if err != nil {
		os.Exit(2)
	}
	if cfg.showHelp {
		return
	}

	settings, uiSettings, err := resolveSettings(cfg, os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	opts := engineopts.Defaults(settings.Repo)
	settings.ApplyToOptions(&opts)
	opts.Write = cfg.write
	opts.Progress = util.ShouldShowProgress(cfg.progress, cfg.noProgress)
	opts.Now = time.Now()
	if err := engineopts.NormalizeAndValidate(&opts); err != nil {
		log.Fatal(err)
	}

	res, err := engine.Run(context.Background(), opts)
	if err != nil {
		log.Fatal(err)
	}

	sel, err := output.ResolveFields(uiSettings.Fields, opts.Write)
	if err != nil {
		log.Fatal(err)
	}

	switch settings.Output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
	case "ndjson":
		if err := output.WriteNDJSON(os.Stdout, res.Items); err != nil {
			log.Fatal(err)
		}
	case "csv":
		if err := output.WriteCSV(os.Stdout, res.Items, sel); err != nil {
			log.Fatal(err)
		}
	case "markdown":
		if err := output.WriteMarkdownTable(os.Stdout, res.Items, sel); err != nil {
			log.Fatal(err)
		}
	case "tsv":
		printTSV(res, sel, uiSettings.Truncate)
	default: // table
		mode, err := termcolor.ParseMode(settings.Color)
		if err != nil {
			log.Fatal(err)
		}
		styles := termcolor.NewStyles(termcolor.Enabled(mode, os.Stdout))
		printTable(res, sel, styles, uiSettings.Truncate)
	}

	if settings.Output == "table" || settings.Output == "tsv" {
		printSummary(os.Stderr, res)
	}
	for _, itemErr := range res.Errors {
		fmt.Fprintf(os.Stderr, "warn: %s:%d [%s] %s\n", itemErr.File, itemErr.Line, itemErr.Stage, itemErr.Message)
	}
	if res.ErrorCount > 0 {
		os.Exit(1)
	}
}

func printTSV(res *engine.Result, sel output.FieldSelection, truncate int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 0, '\t', 0) // tabs only
	fmt.Fprintln(w, strings.Join(output.Headers(sel.Fields), "\t"))
	for _, it := range res.Items {
		row := output.RowValues(it, sel.Fields)
		for i := range row {
			row[i] = clip(row[i], truncate)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func printTable(res *engine.Result, sel output.FieldSelection, styles *termcolor.Styles, truncate int) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(output.Headers(sel.Fields), "\t"))
	for _, it := range res.Items {
		cells := make([]string, 0, len(sel.Fields))
		for _, f := range sel.Fields {
			cells = append(cells, styleCell(it, f.Key, styles, truncate))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

func styleCell(it engine.Item, key string, styles *termcolor.Styles, truncate int) string {
	switch key {
	case "location":
		return styles.Location.Sprint(output.FormatFieldValue(it, key))
	case "method":
		return styles.Method.Sprint(it.Method)
	case "risk":
		return styles.Risk(it.Risky)
	case "applied":
		return styles.AppliedMark(it.Applied)
	case "replacement":
		if it.Replacement == "" {
			return ""
		}
		return styles.Replacement.Sprint(it.Replacement)
	case "preview":
		return clip(it.Preview, truncate)
	default:
		return clip(output.FormatFieldValue(it, key), truncate)
	}
}

func clip(s string, truncate int) string {
	if truncate <= 0 {
		return s
	}
	return textutil.TruncateByWidth(s, truncate, "…")
}

func printSummary(w *os.File, res *engine.Result) {
	parts := []string{
		fmt.Sprintf("%d files scanned", res.FilesScanned),
		fmt.Sprintf("%d calls found", res.Total),
	}
	if res.DryRun {
		parts = append(parts, "dry run (use --write to apply)")
	} else {
		parts = append(parts, fmt.Sprintf("%d removed", res.Removed))
		parts = append(parts, fmt.Sprintf("%d replaced", res.Replaced))
		if res.FilesChanged > 0 {
			parts = append(parts, fmt.Sprintf("%d files changed", res.FilesChanged))
		}
	}
	if res.SkippedRisky > 0 {
		parts = append(parts, fmt.Sprintf("%d risky skipped (use --risky to include)", res.SkippedRisky))
	}
	if res.BackupSession != "" {
		parts = append(parts, fmt.Sprintf("backup %s", res.BackupSession))
	}
	parts = append(parts, fmt.Sprintf("%dms", res.ElapsedMS))
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
