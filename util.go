package tsngen

// util.go holds filesystem probes used before a generation run commits to
// writing artifacts.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckDirectories probes the file system for the existence of every
// directory named in the argument list.  Returns a boolean indicating
// whether all are valid, and an aggregated error when any check failed.
func CheckDirectories(dirs []string) (bool, error) {
	failures := []string{}

	for _, dir := range dirs {
		if len(dir) == 0 {
			continue
		}

		info, err := os.Stat(dir)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s not reachable", dir))
			continue
		}
		if !info.IsDir() {
			failures = append(failures, fmt.Sprintf("%s not a directory", dir))
		}
	}
	if len(failures) == 0 {
		return true, nil
	}

	return false, errors.New(strings.Join(failures, ","))
}

// CheckOutputFiles probes the file system to ensure that every argument
// filename can be written, meaning its directory portion exists.
func CheckOutputFiles(names []string) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		directory, _ := filepath.Split(name)
		if len(directory) == 0 {
			continue
		}
		if _, err := os.Stat(directory); err != nil {
			errs = append(errs, err)
		}
	}

	rtnerr := ReportErrs(errs)
	return rtnerr == nil, rtnerr
}
