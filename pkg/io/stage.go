package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

const filePermissions = 0o644

// Stage collects the artifacts of one export as temporary files in the
// output directory. [Stage.Commit] renames them into place and
// [Stage.Abort] removes them, so an artifact never appears under its final
// name half written.
type Stage struct {
	dir   string
	files []stagedFile
	done  bool
}

type stagedFile struct {
	name string
	tmp  string
}

// NewStage prepares dir, creating it if needed.
func NewStage(dir string) (*Stage, error) {
	if err := errs.ValidateOutputDir(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create output directory %s", dir)
	}
	return &Stage{dir: dir}, nil
}

// Write stages the artifact name with the content produced by fn. If fn
// fails, the temporary file is removed and the error is returned.
func (s *Stage) Write(name string, fn func(io.Writer) error) error {
	if s.done {
		return errs.New(errs.ErrCodeInternal, "stage %s: already committed or aborted", name)
	}
	if err := errs.ValidateArtifactName(name); err != nil {
		return err
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	tmp := f.Name()

	werr := fn(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, filePermissions)
	}
	if werr != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, werr)
	}

	s.files = append(s.files, stagedFile{name: name, tmp: tmp})
	return nil
}

// Open reopens the staged content of name for reading, so an artifact can
// be checked before it is committed.
func (s *Stage) Open(name string) (*os.File, error) {
	for _, f := range s.files {
		if f.name == name {
			return os.Open(f.tmp)
		}
	}
	return nil, errs.New(errs.ErrCodeFileNotFound, "artifact %s is not staged", name)
}

// Commit renames every staged file to its final name and returns the final
// paths. An artifact it replaces is moved aside first. If any rename fails,
// the new artifacts are removed, the previous ones are restored and the
// remaining temporary files are deleted, so the directory keeps the last
// successful export.
func (s *Stage) Commit() ([]string, error) {
	if s.done {
		return nil, errs.New(errs.ErrCodeInternal, "stage already committed or aborted")
	}
	s.done = true

	var moved []replaced
	rollback := func(from int) {
		for _, f := range s.files[from:] {
			os.Remove(f.tmp)
		}
		for i := len(moved) - 1; i >= 0; i-- {
			moved[i].restore()
		}
	}

	for i, f := range s.files {
		r := replaced{final: filepath.Join(s.dir, f.name)}
		if err := r.setAside(f.tmp + ".prev"); err != nil {
			rollback(i)
			return nil, fmt.Errorf("commit %s: %w", f.name, err)
		}
		if err := os.Rename(f.tmp, r.final); err != nil {
			if r.prev != "" {
				os.Rename(r.prev, r.final)
			}
			rollback(i)
			return nil, fmt.Errorf("commit %s: %w", f.name, err)
		}
		moved = append(moved, r)
	}

	paths := make([]string, len(moved))
	for i, r := range moved {
		if r.prev != "" {
			os.Remove(r.prev)
		}
		paths[i] = r.final
	}
	return paths, nil
}

// replaced tracks one committed artifact and the file it displaced.
type replaced struct {
	final string
	prev  string // empty if nothing was displaced
}

func (r *replaced) setAside(prev string) error {
	if _, err := os.Lstat(r.final); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(r.final, prev); err != nil {
		return err
	}
	r.prev = prev
	return nil
}

func (r replaced) restore() {
	os.Remove(r.final)
	if r.prev != "" {
		os.Rename(r.prev, r.final)
	}
}

// Abort removes every staged file. It is a no-op after Commit.
func (s *Stage) Abort() {
	if s.done {
		return
	}
	s.done = true
	for _, f := range s.files {
		os.Remove(f.tmp)
	}
}
