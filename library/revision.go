package library

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision describes the git commit a document folder is checked out at.
type Revision struct {
	Branch string
	Hash   plumbing.Hash
	Dirty  bool
}

// Short renders the revision as "branch@abc1234", with a "*" suffix when the
// worktree has uncommitted changes.
func (r Revision) Short() string {
	s := r.Hash.String()[:7]
	if r.Branch != "" {
		s = r.Branch + "@" + s
	}
	if r.Dirty {
		s += "*"
	}
	return s
}

// FolderRevision returns the revision of the repository containing folder.
// ok is false when folder is not inside a git repository or the repository
// has no commits yet.
func FolderRevision(folder string) (rev Revision, ok bool, err error) {
	repo, err := git.PlainOpenWithOptions(folder, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	rev = Revision{Hash: head.Hash()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err == nil {
		if status, err := wt.Status(); err == nil {
			rev.Dirty = !status.IsClean()
		}
	}
	return rev, true, nil
}
