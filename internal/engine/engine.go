package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/delog/internal/backup"
	"github.com/example/delog/internal/console"
	"github.com/example/delog/internal/detect"
	"github.com/example/delog/internal/execx"
	"github.com/example/delog/internal/model"
	"github.com/example/delog/internal/util"
	"github.com/example/delog/internal/verify"
)

// gitRunner routes every git invocation; tests may swap it out.
var gitRunner execx.Runner = execx.DefaultRunner()

const maxJobs = 64

// Run は指定されたオプションに従ってリポジトリを走査し、検出したコンソール
// 呼び出しの一覧（apply モードでは書き換え結果）を返します。
//
// 1 ファイルの失敗は Result.Errors に集約され、バッチは継続します。
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Jobs > maxJobs {
		opts.Jobs = maxJobs
	}
	if strings.TrimSpace(opts.RepoDir) == "" {
		opts.RepoDir = "."
	}
	rs := console.NewRuleset(opts.Receiver, opts.Methods)

	if opts.PathRegexCompiled == nil && len(opts.PathRegex) > 0 {
		compiled, err := compilePathRegex(opts.PathRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid --path-regex: %w", err)
		}
		opts.PathRegexCompiled = compiled
	}

	files, err := listCandidates(ctx, opts, rs.Receiver)
	if err != nil {
		return nil, err
	}
	files = filterPathsByRegex(files, opts.PathRegexCompiled)
	if len(files) == 0 {
		return &Result{DryRun: !opts.Write, ElapsedMS: msSince(start)}, nil
	}

	var sess *backup.Session
	store := backup.Open(opts.RepoDir)
	if opts.Write && opts.Backup {
		sess = store.Begin(opts.Now)
	}

	type fileOutcome struct {
		items   []Item
		errs    []ItemError
		changed bool
	}

	jobs := make(chan string)
	results := make(chan fileOutcome)
	prog := util.NewProgress(len(files), opts.Progress)

	var backupMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(opts.Jobs)
	for i := 0; i < opts.Jobs; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				items, errs, changed := processFile(opts, rs, path, sess, &backupMu)
				prog.Advance()
				results <- fileOutcome{items: items, errs: errs, changed: changed}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	res := &Result{DryRun: !opts.Write, FilesScanned: len(files)}
	for out := range results {
		res.Items = append(res.Items, out.items...)
		res.Errors = append(res.Errors, out.errs...)
		if out.changed {
			res.FilesChanged++
		}
	}
	prog.Done()

	if sess != nil {
		if err := store.Save(sess); err != nil {
			res.Errors = append(res.Errors, ItemError{Stage: "backup", Message: err.Error()})
		} else if len(sess.Entries) > 0 {
			res.BackupSession = sess.ID
		}
	}

	sort.SliceStable(res.Items, func(i, j int) bool {
		if res.Items[i].File == res.Items[j].File {
			return res.Items[i].Line < res.Items[j].Line
		}
		return res.Items[i].File < res.Items[j].File
	})
	sort.SliceStable(res.Errors, func(i, j int) bool {
		if res.Errors[i].File == res.Errors[j].File {
			if res.Errors[i].Line == res.Errors[j].Line {
				return res.Errors[i].Stage < res.Errors[j].Stage
			}
			return res.Errors[i].Line < res.Errors[j].Line
		}
		return res.Errors[i].File < res.Errors[j].File
	})

	res.Total = len(res.Items)
	for _, it := range res.Items {
		switch {
		case !it.Applied && it.Risky:
			res.SkippedRisky++
		case it.Applied && it.Replacement != "":
			res.Replaced++
		case it.Applied:
			res.Removed++
		}
	}
	res.ErrorCount = len(res.Errors)
	res.ElapsedMS = msSince(start)
	return res, nil
}

func newItemError(file string, line int, stage string, err error) ItemError {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return ItemError{File: file, Line: line, Stage: stage, Message: msg}
}

// scanMatches wraps the core scan so that an unexpected panic in it is
// reported as "no matches for this file" instead of aborting the batch.
func scanMatches(text string, rs *console.Ruleset) (matches []model.Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()
	return console.ScanText(text, rs), nil
}

func processFile(opts Options, rs *console.Ruleset, relPath string, sess *backup.Session, backupMu *sync.Mutex) ([]Item, []ItemError, bool) {
	full := filepath.Join(opts.RepoDir, relPath)
	info, err := os.Stat(full)
	if err != nil {
		return nil, []ItemError{newItemError(relPath, 0, "stat", err)}, false
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, []ItemError{newItemError(relPath, 0, "read", err)}, false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, nil, false
	}
	if opts.MaxFileBytes > 0 && len(data) > opts.MaxFileBytes {
		return nil, nil, false
	}
	lang := detect.FromPathAndContent(relPath, data)
	if !detect.MatchesLang(lang, opts.DetectLangs) {
		return nil, nil, false
	}

	text := string(data)
	matches, err := scanMatches(text, rs)
	if err != nil {
		return nil, []ItemError{newItemError(relPath, 0, "scan", err)}, false
	}
	if len(matches) == 0 {
		return nil, nil, false
	}

	items := make([]Item, 0, len(matches))
	var errs []ItemError
	var apply []model.RemovalStrategy
	for _, m := range matches {
		strat := console.PlanRemoval(console.ContextFor(text, m.Span), m.Span)
		if strat == nil {
			errs = append(errs, ItemError{File: relPath, Line: m.StartLine + 1, Stage: "classify", Message: "match span inconsistent with document"})
			continue
		}
		applied := opts.Write && (!strat.Risky || opts.ApplyRisky)
		items = append(items, Item{
			File:        relPath,
			Line:        m.StartLine + 1,
			Method:      m.Method,
			Class:       strat.Class,
			Risky:       strat.Risky,
			Preview:     m.Preview,
			Replacement: strat.Replacement,
			Reason:      strat.Reason,
			Applied:     applied,
		})
		if applied {
			apply = append(apply, *strat)
		}
	}
	if !opts.Write || len(apply) == 0 {
		return items, errs, false
	}

	rewritten := console.Apply(text, apply)
	if rewritten == text {
		return items, errs, false
	}
	if opts.Verify {
		if verr := verify.Regression(relPath, text, rewritten); verr != nil {
			for i := range items {
				items[i].Applied = false
			}
			errs = append(errs, newItemError(relPath, 0, "verify", verr))
			return items, errs, false
		}
	}
	if sess != nil {
		backupMu.Lock()
		sess.Add(relPath, data, info.Mode())
		backupMu.Unlock()
	}
	if err := os.WriteFile(full, []byte(rewritten), info.Mode().Perm()); err != nil {
		for i := range items {
			items[i].Applied = false
		}
		errs = append(errs, newItemError(relPath, 0, "write", err))
		return items, errs, false
	}
	return items, errs, true
}

// listCandidates resolves the files to scan. Unless disabled, a git grep
// prefilter keeps the worker pool away from files that cannot contain the
// receiver at all.
func listCandidates(ctx context.Context, opts Options, receiver string) ([]string, error) {
	if opts.NoPrefilter {
		return gitListFiles(ctx, opts.RepoDir, opts.Paths, opts.Excludes, opts.ExcludeTypical)
	}
	pattern := regexp.QuoteMeta(receiver) + `\s*\.`
	return gitGrepFiles(ctx, opts.RepoDir, pattern, opts.Paths, opts.Excludes, opts.ExcludeTypical)
}

func gitGrepFiles(ctx context.Context, repo, pattern string, includes, excludes []string, typical bool) ([]string, error) {
	pathspecs := buildPathspecs(includes, excludes, typical)
	args := []string{"-c", "core.quotePath=false", "grep", "-Ilz", "-E", pattern, "--"}
	args = append(args, pathspecs...)
	out, stderr, err := gitRunner.Run(ctx, repo, "git", args...)
	if err != nil {
		// exit code 1 means "no matches"
		if execx.ExitCode(err) == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("git grep -l: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return splitNUL(out), nil
}

func gitListFiles(ctx context.Context, repo string, includes, excludes []string, typical bool) ([]string, error) {
	args := []string{"ls-files", "-z"}
	args = append(args, buildPathspecs(includes, excludes, typical)...)
	out, stderr, err := gitRunner.Run(ctx, repo, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return splitNUL(out), nil
}

func splitNUL(out []byte) []string {
	if len(out) == 0 {
		return nil
	}
	parts := bytes.Split(out, []byte{0})
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		paths = append(paths, filepath.ToSlash(string(p)))
	}
	return paths
}

func msSince(t time.Time) int64 { return time.Since(t).Milliseconds() }
