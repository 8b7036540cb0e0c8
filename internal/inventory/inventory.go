// Package inventory manages the local clone of the machine inventory
// repository and reads host definitions out of it.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"

	"dotfiles/internal/logger"
	"dotfiles/internal/retry"
)

const defaultRepoURL = "git@github.com:connormason/dotfiles-inventory.git"

var (
	cloneRetries   = 3
	cloneRetryWait = 2 * time.Second
)

// RepoURL returns the inventory repository URL, honoring the
// DOTFILES_INVENTORY_REPO_URL override.
func RepoURL() string {
	if url := os.Getenv("DOTFILES_INVENTORY_REPO_URL"); url != "" {
		return url
	}
	return defaultRepoURL
}

// Host is a single machine from the inventory.
type Host struct {
	Name    string
	Group   string
	Address string
}

// Update brings the inventory clone at dir up to date: clone when missing,
// pull when present. With force set, local changes are discarded first. A
// directory that exists but is not a git repository is re-cloned.
func Update(dir, url string, force bool) error {
	repo, err := git.PlainOpen(dir)
	if err == git.ErrRepositoryNotExists {
		if _, statErr := os.Stat(dir); statErr == nil {
			logger.Warn("[WARN] %s exists but is not a git repository. Re-cloning...\n", dir)
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}
		return clone(dir, url)
	}
	if err != nil {
		return fmt.Errorf("failed to open inventory repository %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if force {
		logger.Warn("[WARN] Discarding local inventory changes\n")
		if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset}); err != nil {
			return fmt.Errorf("failed to reset inventory: %w", err)
		}
	}

	logger.Info("[INFO] Pulling inventory updates in %s\n", dir)
	upToDate := false
	err = retry.Do(cloneRetries, cloneRetryWait, 2.0, func() error {
		err := wt.Pull(&git.PullOptions{RemoteName: "origin"})
		if err == git.NoErrAlreadyUpToDate {
			upToDate = true
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to pull inventory: %w", err)
	}
	if upToDate {
		logger.Info("[INFO] Inventory is already up to date\n")
		return nil
	}
	logger.Success("[INFO] Inventory updated\n")
	return nil
}

func clone(dir, url string) error {
	logger.Info("[INFO] Cloning inventory from %s into %s\n", url, dir)
	err := retry.Do(cloneRetries, cloneRetryWait, 2.0, func() error {
		_, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clone inventory: %w", err)
	}
	logger.Success("[INFO] Inventory cloned\n")
	return nil
}

// Status reports the state of the inventory clone: remote, branch, last
// commit, and whether the worktree is dirty.
func Status(dir string) error {
	repo, err := git.PlainOpen(dir)
	if err == git.ErrRepositoryNotExists {
		return fmt.Errorf("no inventory clone at %s (run `dotfiles inventory update` first)", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to open inventory repository %s: %w", dir, err)
	}

	if remote, err := repo.Remote("origin"); err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 {
			logger.Info("[INFO] Remote: %s\n", urls[0])
		}
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}
	logger.Info("[INFO] Branch: %s\n", head.Name().Short())

	if commit, err := repo.CommitObject(head.Hash()); err == nil {
		logger.Info("[INFO] Last commit: %s (%s, %s)\n",
			head.Hash().String()[:8],
			commit.Author.When.Format("2006-01-02 15:04"),
			firstLine(commit.Message))
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if st.IsClean() {
		logger.Info("[INFO] Worktree: clean\n")
	} else {
		logger.Warn("[WARN] Worktree: %d modified file(s)\n", len(st))
	}

	if _, err := os.Stat(filepath.Join(dir, "inventory.yml")); err != nil {
		logger.Warn("[WARN] inventory.yml not found in clone\n")
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// inventoryFile mirrors the inventory.yml layout: groups under all.children,
// hosts under each group, with an optional ansible_host address.
type inventoryFile struct {
	All struct {
		Children map[string]struct {
			Hosts map[string]struct {
				AnsibleHost string `yaml:"ansible_host"`
			} `yaml:"hosts"`
		} `yaml:"children"`
	} `yaml:"all"`
}

// Hosts parses the inventory file and returns all hosts, sorted by group
// then name. A host without an explicit address gets its name as the address.
func Hosts(path string) ([]Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file %s: %w", path, err)
	}

	var inv inventoryFile
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file %s: %w", path, err)
	}

	var hosts []Host
	for group, g := range inv.All.Children {
		for name, h := range g.Hosts {
			address := h.AnsibleHost
			if address == "" {
				address = name
			}
			hosts = append(hosts, Host{Name: name, Group: group, Address: address})
		}
	}
	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].Group != hosts[j].Group {
			return hosts[i].Group < hosts[j].Group
		}
		return hosts[i].Name < hosts[j].Name
	})
	return hosts, nil
}
