package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// LoadGit clones url into cacheDir, checks out rev (HEAD when empty), and
// loads the bundle at the repository root. Checkouts are cached per resolved
// commit, so repeated loads of a pinned revision never touch the network
// twice.
func (l *Loader) LoadGit(url, rev, cacheDir string) (*Bundle, error) {
	dir, err := l.ensureCheckout(url, rev, cacheDir)
	if err != nil {
		return nil, err
	}
	return l.LoadDir(dir)
}

func (l *Loader) ensureCheckout(url, rev, cacheDir string) (string, error) {
	if cacheDir == "" {
		return "", fmt.Errorf("driver: git load needs a cache directory")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}

	revision := plumbing.Revision(strings.TrimSpace(rev))
	if revision == "" {
		revision = plumbing.Revision("HEAD")
	}

	tmpDir, err := os.MkdirTemp(cacheDir, "git-fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	l.log.Debug("cloning bundle repository", "url", url, "rev", string(revision))
	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("driver: git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("driver: resolve revision %s: %w", revision, err)
	}

	targetDir := filepath.Join(cacheDir, hash.String())
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return targetDir, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("driver: git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return targetDir, nil
}
