package model

import (
	"strings"

	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// PathSeparator joins name segments of a collected path
const PathSeparator = "/"

// CollectedFile is one materialized leaf of the source tree
type CollectedFile struct {
	Path    string // Slash-delimited relative path
	Content []byte // Raw or exported bytes
}

// JoinPath appends a name segment to a path prefix
func JoinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + PathSeparator + name
}

// ValidateName checks that a node name can be used as a single path segment.
// Names containing the separator would otherwise add directory levels that do
// not exist in the source tree.
func ValidateName(name string) error {
	if strings.Contains(name, PathSeparator) {
		return goerr.New("node name contains path separator",
			goerr.V("name", name),
			goerr.T(types.ErrTagInvalidArgument),
		)
	}
	return nil
}

// ValidatePaths checks that every path is a non-empty relative path without
// empty, "." or ".." segments, and that no path is repeated or used both as a
// file and as a directory of another path.
func ValidatePaths(paths []string) error {
	seen := make(map[string]int, len(paths))
	for i, p := range paths {
		if p == "" {
			return goerr.New("empty file path", goerr.V("index", i), goerr.T(types.ErrTagInvalidArgument))
		}
		for _, segment := range strings.Split(p, PathSeparator) {
			if segment == "" || segment == "." || segment == ".." {
				return goerr.New("invalid path segment", goerr.V("path", p), goerr.T(types.ErrTagInvalidArgument))
			}
		}
		if prev, ok := seen[p]; ok {
			return goerr.New("duplicate file path",
				goerr.V("path", p),
				goerr.V("first_index", prev),
				goerr.V("second_index", i),
				goerr.T(types.ErrTagPathCollision),
			)
		}
		seen[p] = i
	}

	for _, p := range paths {
		for dir := parentDir(p); dir != ""; dir = parentDir(dir) {
			if _, ok := seen[dir]; ok {
				return goerr.New("file path is also used as a directory",
					goerr.V("path", p),
					goerr.V("file", dir),
					goerr.T(types.ErrTagPathCollision),
				)
			}
		}
	}
	return nil
}

func parentDir(p string) string {
	idx := strings.LastIndex(p, PathSeparator)
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// ValidateFiles runs ValidatePaths over a collected file set
func ValidateFiles(files []*CollectedFile) error {
	paths := make([]string, len(files))
	for i, f := range files {
		if f == nil {
			return goerr.New("nil collected file", goerr.V("index", i), goerr.T(types.ErrTagInvalidArgument))
		}
		paths[i] = f.Path
	}
	return ValidatePaths(paths)
}
