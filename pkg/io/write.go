package io

import (
	"os"
	"path/filepath"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

// File is one artifact of a [WriteFilesAtomic] batch.
type File struct {
	Path string
	Data []byte
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, and returns the number of bytes written.
// On failure the destination is left untouched and the error carries
// [errs.ErrCodeWrite].
func WriteFileAtomic(path string, data []byte) (int, error) {
	s, err := stage(path, data)
	if err != nil {
		return 0, err
	}
	if err := os.Rename(s.tmp, path); err != nil {
		os.Remove(s.tmp)
		return 0, errs.Wrap(errs.ErrCodeWrite, err, "rename into %s", path)
	}
	return s.size, nil
}

// WriteFilesAtomic writes every file or none of them and returns the sizes
// in input order. All data is staged in temporary files before any
// destination changes. If a rename then fails, destinations already
// replaced in this batch get their previous content back.
func WriteFilesAtomic(files []File) ([]int, error) {
	staged := make([]*stagedFile, 0, len(files))
	defer func() {
		for _, s := range staged {
			s.cleanup()
		}
	}()

	for _, f := range files {
		if info, err := os.Lstat(f.Path); err == nil && !info.Mode().IsRegular() {
			return nil, errs.New(errs.ErrCodeWrite, "%s exists and is not a regular file", f.Path)
		}
		s, err := stage(f.Path, f.Data)
		if err != nil {
			return nil, err
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := s.commit(); err != nil {
			for j := i - 1; j >= 0; j-- {
				staged[j].rollback()
			}
			return nil, err
		}
	}

	sizes := make([]int, len(staged))
	for i, s := range staged {
		sizes[i] = s.size
	}
	return sizes, nil
}

// stagedFile tracks one artifact between staging and commit.
type stagedFile struct {
	path      string
	tmp       string
	backup    string
	size      int
	committed bool
}

// stage writes data to a synced temporary file next to path.
func stage(path string, data []byte) (*stagedFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "create temp file for %s", path)
	}
	s := &stagedFile{path: path, tmp: tmp.Name()}

	n, err := tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(s.tmp)
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(s.tmp)
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(s.tmp)
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "close %s", path)
	}
	if err := os.Chmod(s.tmp, 0o644); err != nil {
		os.Remove(s.tmp)
		return nil, errs.Wrap(errs.ErrCodeWrite, err, "chmod %s", path)
	}
	s.size = n
	return s, nil
}

// commit keeps a hard link to the current destination, if any, and renames
// the staged file over it.
func (s *stagedFile) commit() error {
	if _, err := os.Lstat(s.path); err == nil {
		backup := s.tmp + ".old"
		if err := os.Link(s.path, backup); err != nil {
			return errs.Wrap(errs.ErrCodeWrite, err, "keep previous %s", s.path)
		}
		s.backup = backup
	}
	if err := os.Rename(s.tmp, s.path); err != nil {
		return errs.Wrap(errs.ErrCodeWrite, err, "rename into %s", s.path)
	}
	s.committed = true
	return nil
}

// rollback restores the destination to its state before commit.
func (s *stagedFile) rollback() {
	if !s.committed {
		return
	}
	if s.backup != "" {
		if os.Rename(s.backup, s.path) == nil {
			s.backup = ""
		}
	} else {
		os.Remove(s.path)
	}
	s.committed = false
}

// cleanup removes whatever temporary files remain.
func (s *stagedFile) cleanup() {
	if !s.committed {
		os.Remove(s.tmp)
	}
	if s.backup != "" {
		os.Remove(s.backup)
	}
}
