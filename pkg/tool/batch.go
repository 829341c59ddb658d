package tool

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// writeFile replaces the content of an existing file, keeping its mode.
func writeFile(fs afero.Fs, path string, data []byte) error {
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, info.Mode().Perm())
}

// expand expands the glob patterns among args, keeping other arguments as
// they are. Patterns may use "**" to match any number of directories.
func expand(fs afero.Fs, args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		fsys, base, pattern := afero.NewIOFS(fs), "", filepath.ToSlash(arg)
		if filepath.IsAbs(arg) {
			// Patterns on an fs.FS are unrooted.
			base, pattern = doublestar.SplitPattern(pattern)
			fsys = afero.NewIOFS(afero.NewBasePathFs(fs, base))
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			files = append(files, filepath.Join(base, filepath.FromSlash(m)))
		}
	}
	return files, nil
}

// result is the outcome of a batch job for one file.
type result struct {
	file string
	out  string
	err  error
}

// runBatch runs fn on every file, at most jobs at a time, and returns the
// results in the order of files. jobs <= 0 means one job per CPU. fn failing for one file does not stop the others.
func runBatch(ctx context.Context, files []string, jobs int, fn func(ctx context.Context, file string) (string, error)) []result {
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			out, err := fn(ctx, file)
			results[i] = result{file, out, err}
			return nil
		})
	}
	g.Wait()
	return results
}

// report writes the output of every result and combines the errors. With
// more than one result, outputs are labeled with the file name: on the same
// line for one-line outputs, on a line of its own otherwise.
func (e *env) report(results []result) error {
	var errs *multierror.Error
	for _, r := range results {
		if r.err != nil {
			errs = multierror.Append(errs, r.err)
			continue
		}
		if r.out == "" {
			continue
		}
		switch {
		case len(results) == 1:
			fmt.Fprint(e.fds[1], r.out)
		case strings.Count(r.out, "\n") > 1:
			fmt.Fprintf(e.fds[1], "%s:\n%s", r.file, r.out)
		default:
			fmt.Fprintf(e.fds[1], "%s: %s", r.file, r.out)
		}
	}
	return errs.ErrorOrNil()
}
