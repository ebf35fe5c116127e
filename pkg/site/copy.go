package site

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree copies the directory src to dst, which must not exist yet.
// Symlinks are followed: a linked file is copied as a regular file and a
// linked directory is copied as a directory, so nothing in dst points back
// into src. Regular files keep their permission bits. Other file types are
// skipped.
func CopyTree(src, dst string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	return copyTree(resolved, dst, map[string]bool{})
}

// copyTree copies the resolved directory src. active holds the resolved
// directories currently being copied; a link back into one of them is a
// cycle and is skipped.
func copyTree(src, dst string, active map[string]bool) error {
	if active[src] {
		return nil
	}
	active[src] = true
	defer delete(active, src)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			return copyLink(path, target, active)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch mode := info.Mode(); {
		case mode.IsDir():
			return os.MkdirAll(target, mode.Perm()|0700)
		case mode.IsRegular():
			return copyFile(path, target, mode.Perm())
		default:
			return nil
		}
	})
}

// copyLink copies whatever the link at path resolves to.
func copyLink(path, target string, active map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return err
	}
	switch {
	case info.IsDir():
		return copyTree(resolved, target, active)
	case info.Mode().IsRegular():
		return copyFile(resolved, target, info.Mode().Perm())
	default:
		return nil
	}
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
