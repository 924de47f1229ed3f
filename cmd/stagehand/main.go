// Command stagehand is an interactive, line- and hunk-granularity staging
// tool over git diff output.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	charmlipgloss "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/bubbletea"
	"github.com/fwojciec/stagehand/chroma"
	"github.com/fwojciec/stagehand/fs"
	"github.com/fwojciec/stagehand/genai"
	"github.com/fwojciec/stagehand/git"
	"github.com/fwojciec/stagehand/gitdiff"
	"github.com/fwojciec/stagehand/jsonl"
	themes "github.com/fwojciec/stagehand/lipgloss"
	"github.com/fwojciec/stagehand/unidiff"
	"github.com/fwojciec/stagehand/worddiff"
)

// version is set at build time via -ldflags.
var version = "dev"

// ErrNoChanges reports an empty diff: there is nothing to review.
var ErrNoChanges = errors.New("no changes")

// App runs one stagehand invocation. Fields are exported so tests can
// inject collaborators; main fills them from flags and config.
type App struct {
	Git     stagehand.Repository
	Parser  stagehand.Parser
	Viewer  stagehand.Viewer
	Journal stagehand.Journal

	// In, when set, is a diff to review read-only instead of the repository.
	In  io.Reader
	Out io.Writer

	Cached      bool     // start on the index side
	Context     int      // context lines per hunk
	Paths       []string // pathspecs limiting the diff
	ShowJournal bool     // print the apply journal instead of staging
}

// Run executes the invocation: the journal listing, a read-only review of
// a diff on In, or the interactive stager over the repository.
func (a *App) Run(ctx context.Context) error {
	if a.ShowJournal {
		return a.printJournal()
	}
	if a.In != nil {
		return a.reviewInput(ctx)
	}
	snap, err := a.Git.Changes(ctx, stagehand.DiffRequest{Context: a.Context, Paths: a.Paths})
	if err != nil {
		return fmt.Errorf("read changes: %w", err)
	}
	text := snap.Worktree
	if a.Cached {
		text = snap.Index
	}
	diff, err := a.Parser.Parse(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("parse diff: %w", err)
	}
	return a.Viewer.View(ctx, diff)
}

func (a *App) reviewInput(ctx context.Context) error {
	b, err := io.ReadAll(a.In)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return ErrNoChanges
	}
	diff, err := a.Parser.Parse(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("parse diff: %w", err)
	}
	return a.Viewer.View(ctx, diff)
}

func (a *App) printJournal() error {
	recs, err := a.Journal.Load()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	for _, rec := range recs {
		fmt.Fprintf(a.Out, "%s  git %s  %s\n",
			rec.Time.Format(time.RFC3339),
			strings.Join(rec.Args, " "),
			strings.Join(rec.Files, " "))
	}
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, ErrNoChanges) {
			fmt.Fprintln(os.Stderr, "no changes")
			return
		}
		fmt.Fprintf(os.Stderr, "stagehand: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fl := flag.NewFlagSet("stagehand", flag.ExitOnError)
	cached := fl.Bool("cached", false, "review the index instead of the worktree")
	contextLines := fl.Int("context", 0, "context lines per hunk (default from config, else 3)")
	dryRun := fl.Bool("dry-run", false, "print synthesized patches and a preview instead of applying")
	noColor := fl.Bool("no-color", false, "disable colors")
	showJournal := fl.Bool("journal", false, "print the apply journal and exit")
	debugFile := fl.String("debug", "", "append debug logs to `file` (also: STAGEHAND_DEBUG)")
	showVersion := fl.Bool("version", false, "print the version and exit")
	fl.Usage = func() {
		fmt.Fprintln(fl.Output(), "usage: stagehand [flags] [pathspec...]")
		fmt.Fprintln(fl.Output(), "       stagehand -   (review a diff from stdin, read-only)")
		fl.PrintDefaults()
	}
	if err := fl.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println("stagehand " + version)
		return nil
	}

	cfg, err := fs.LoadConfig(filepath.Join(fs.DefaultConfigDir(), "config.json"))
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(*debugFile)
	if err != nil {
		return err
	}
	defer closeLog()

	width := stagehand.DefaultContext
	if cfg.ContextLines > 0 {
		width = cfg.ContextLines
	}
	if *contextLines > 0 {
		width = *contextLines
	}

	paths := fl.Args()
	fromStdin := len(paths) > 0 && paths[0] == "-"
	if fromStdin {
		if len(paths) > 1 {
			return errors.New("pathspecs cannot follow -")
		}
		paths = nil
	}

	journalPath := cfg.Journal
	if journalPath == "" {
		journalPath = filepath.Join(fs.DefaultCacheDir(), "journal.jsonl")
	}
	journal := jsonl.NewJournal(journalPath)
	parser := unidiff.NewParser()

	client := git.NewClient(git.NewRunner(), git.WithGitPath(cfg.GitPath), git.WithLogger(logger))
	var repo stagehand.Repository = git.NewJournaledRepository(client, journal, parser, git.WithJournalLogger(logger))
	var dryOut *bytes.Buffer
	if *dryRun {
		// The stager owns the terminal while it runs, so dry-run output is
		// buffered and flushed after it exits.
		dryOut = &bytes.Buffer{}
		repo = gitdiff.NewDryRunRepository(repo, parser, gitdiff.NewPreviewer(), dryOut)
	}

	theme := themes.ByName(cfg.Theme)
	renderer := charmlipgloss.NewRenderer(os.Stdout)
	if *noColor {
		renderer = charmlipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.Ascii))
	}
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return err
	}

	var jump *stagehand.JumpTarget
	opts := []bubbletea.Option{
		bubbletea.WithRequest(stagehand.DiffRequest{Context: width, Paths: paths}),
		bubbletea.WithTheme(theme),
		bubbletea.WithRenderer(renderer),
		bubbletea.WithTokenizer(tokenizer),
		bubbletea.WithLanguageDetector(chroma.NewDetector()),
		bubbletea.WithWordDiffer(worddiff.NewDiffer()),
		bubbletea.WithJumpHandler(func(t stagehand.JumpTarget) { jump = &t }),
	}
	if !fromStdin {
		opts = append(opts, bubbletea.WithRepository(repo))
	}
	if *cached {
		opts = append(opts, bubbletea.WithIndexView())
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		suggester, err := genai.NewSuggester(ctx, cfg.SuggestModel)
		if err != nil {
			return fmt.Errorf("create suggester: %w", err)
		}
		opts = append(opts, bubbletea.WithSuggester(suggester))
	}

	app := &App{
		Git:         repo,
		Parser:      parser,
		Viewer:      bubbletea.NewStager(opts...),
		Journal:     journal,
		Out:         os.Stdout,
		Cached:      *cached,
		Context:     width,
		Paths:       paths,
		ShowJournal: *showJournal,
	}
	if fromStdin {
		app.In = os.Stdin
	}
	if err := app.Run(ctx); err != nil {
		return err
	}
	if dryOut != nil && dryOut.Len() > 0 {
		fmt.Fprint(app.Out, dryOut.String())
	}
	if jump != nil {
		fmt.Fprintf(app.Out, "%s:%d:%d\n", jump.Path, jump.Line, jump.Col)
	}
	return nil
}

// newLogger returns the debug logger. Without a destination it discards
// everything; the TUI owns the terminal, so logs never go to stderr.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		path = os.Getenv("STAGEHAND_DEBUG")
	}
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{Level: log.DebugLevel, ReportTimestamp: true})
	return logger, func() { f.Close() }, nil
}
