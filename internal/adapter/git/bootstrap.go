// Package git is the local git side-channel used only for the one-time
// bootstrap of an empty remote repository.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Bootstrap pushes an initial commit to an empty remote repository so a
// branch ref exists to resolve. Each repository gets its own scratch
// working copy under Workdir, keyed "{owner}-{repo}".
type Bootstrap struct {
	Workdir     string
	ProductName string
	ProductURL  string
}

// New creates a Bootstrap rooted at workdir.
func New(workdir, productName, productURL string) *Bootstrap {
	return &Bootstrap{
		Workdir:     workdir,
		ProductName: productName,
		ProductURL:  productURL,
	}
}

// Initialize creates a local working copy with a placeholder README,
// commits it, and pushes it to the remote's main branch.
func (b *Bootstrap) Initialize(ctx context.Context, owner, repo, remoteURL string) error {
	dir := filepath.Join(b.Workdir, fmt.Sprintf("%s-%s", owner, repo))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bootstrap dir: %w", err)
	}

	if _, err := gitCmd(ctx, dir, "init", "-b", "main"); err != nil {
		return err
	}

	readme := fmt.Sprintf("# Initial commit by [%s](%s)\n", b.ProductName, b.ProductURL)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("write placeholder file: %w", err)
	}

	if _, err := gitCmd(ctx, dir, "add", "README.md"); err != nil {
		return err
	}
	if _, err := gitCmd(ctx, dir,
		"-c", "user.name="+b.ProductName,
		"-c", "user.email=bot@"+strings.ToLower(b.ProductName)+".invalid",
		"commit", "-m", "Initial commit"); err != nil {
		return err
	}
	if _, err := gitCmd(ctx, dir, "remote", "add", "origin", remoteURL); err != nil {
		return err
	}
	if _, err := gitCmd(ctx, dir, "push", "-u", "origin", "main"); err != nil {
		return err
	}
	return nil
}

// gitCmd runs a git command in dir.
func gitCmd(ctx context.Context, dir string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	c.WaitDelay = 500 * time.Millisecond
	c.Cancel = func() error {
		return c.Process.Kill()
	}

	output, err := c.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w (output: %s)", strings.Join(args, " "), err, string(output))
	}
	return string(output), nil
}
