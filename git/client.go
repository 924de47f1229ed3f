// Package git shells out to the git binary for diffs and patch application.
package git

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/stagehand"
)

// Client issues git commands through a Runner and owns their argv
// construction.
type Client struct {
	runner stagehand.Runner
	path   string
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithGitPath sets the git executable to run instead of the one on PATH.
func WithGitPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.path = path
		}
	}
}

// WithLogger sets the logger used to trace issued commands.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new git client over the given runner.
func NewClient(runner stagehand.Runner, opts ...Option) *Client {
	c := &Client{
		runner: runner,
		path:   "git",
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DiffOptions select what "git diff" reports.
type DiffOptions struct {
	Cached           bool     // diff the index against HEAD instead of the worktree
	Context          int      // context lines per hunk; 0 keeps git's default
	IgnoreWhitespace bool     // pass --ignore-all-space
	Base             string   // base commit, "" for the default
	Target           string   // target commit, "" for the default
	Paths            []string // limit the diff to the given pathspecs
}

// ApplyOptions select how a patch is applied.
type ApplyOptions struct {
	Cached      bool // apply to the index
	Reverse     bool // apply in reverse
	ZeroContext bool // pass --unidiff-zero for patches without context lines
}

// ApplyArgs returns the argv "git apply" is invoked with, without the
// executable itself. The trailing "-" reads the patch from stdin.
func ApplyArgs(opts ApplyOptions) []string {
	args := []string{"apply"}
	if opts.Reverse {
		args = append(args, "-R")
	}
	if opts.Cached {
		args = append(args, "--cached")
	}
	if opts.ZeroContext {
		args = append(args, "--unidiff-zero")
	}
	return append(args, "-")
}

// Diff runs "git diff" and returns the raw patch text.
func (c *Client) Diff(ctx context.Context, opts DiffOptions) ([]byte, error) {
	args := []string{"diff"}
	if opts.IgnoreWhitespace {
		args = append(args, "--ignore-all-space")
	}
	if opts.Context > 0 {
		args = append(args, "--unified="+strconv.Itoa(opts.Context))
	}
	args = append(args, "--patch", "--no-color")
	if opts.Cached {
		args = append(args, "--cached")
	}
	if opts.Base != "" {
		args = append(args, opts.Base)
	}
	if opts.Target != "" {
		args = append(args, opts.Target)
	}
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}
	return c.run(ctx, nil, args...)
}

// Apply feeds the patch to "git apply" on stdin.
func (c *Client) Apply(ctx context.Context, patch string, opts ApplyOptions) error {
	_, err := c.run(ctx, strings.NewReader(patch), ApplyArgs(opts)...)
	return err
}

// Snapshot is the pair of diffs describing the repository at one moment:
// the worktree against the index and the index against HEAD.
type Snapshot struct {
	Worktree []byte
	Index    []byte
}

// Ensure Client implements stagehand.Repository.
var _ stagehand.Repository = (*Client)(nil)

// Changes implements stagehand.Repository by fetching both diff sides.
func (c *Client) Changes(ctx context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
	snap, err := c.Snapshot(ctx, DiffOptions{
		Context:          req.Context,
		IgnoreWhitespace: req.IgnoreWhitespace,
		Paths:            req.Paths,
	})
	if err != nil {
		return stagehand.RepoSnapshot{}, err
	}
	return stagehand.RepoSnapshot{
		Worktree: string(snap.Worktree),
		Index:    string(snap.Index),
	}, nil
}

// ApplyPatch implements stagehand.Repository.
func (c *Client) ApplyPatch(ctx context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error {
	return c.Apply(ctx, p.Text, ApplyOptions{
		Cached:      req.Cached,
		Reverse:     req.Reverse,
		ZeroContext: p.ZeroContext,
	})
}

// Contents implements stagehand.Repository. It reads the index copy of path
// via "git show :path", or the HEAD copy when fromHead is set.
func (c *Client) Contents(ctx context.Context, path string, fromHead bool) (string, error) {
	ref := ":" + path
	if fromHead {
		ref = "HEAD:" + path
	}
	out, err := c.run(ctx, nil, "show", ref)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Snapshot fetches the worktree and index diffs concurrently. The Cached
// field of opts is ignored; both sides are always fetched.
func (c *Client) Snapshot(ctx context.Context, opts DiffOptions) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o := opts
		o.Cached = false
		out, err := c.Diff(ctx, o)
		if err != nil {
			return fmt.Errorf("worktree diff: %w", err)
		}
		snap.Worktree = out
		return nil
	})
	g.Go(func() error {
		o := opts
		o.Cached = true
		out, err := c.Diff(ctx, o)
		if err != nil {
			return fmt.Errorf("index diff: %w", err)
		}
		snap.Index = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	c.logger.Debug("run", "cmd", c.path+" "+strings.Join(args, " "))
	return c.runner.Run(ctx, stdin, c.path, args...)
}
