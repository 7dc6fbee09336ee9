package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks input and returns one job per matching geometry file, or
// one per directory when merge is enabled. Output paths mirror the input
// tree below output, and every job writes into a directory of its own so
// that texture files never collide:
//
//	a/b/house.obj -> <output>/a/b/house/house.obj
//	a/b/*.obj     -> <output>/a/b/b.obj (merge)
func (r *Runner) Discover(input, output string) ([]Job, error) {
	byDir := make(map[string][]string)
	var dirs []string
	skip, _ := filepath.Abs(output)

	err := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Output nested inside the input tree is not input.
			if abs, _ := filepath.Abs(path); abs == skip && path != input {
				return filepath.SkipDir
			}
			return nil
		}
		if !r.matches(d.Name()) {
			return nil
		}
		dir := filepath.Dir(path)
		if _, ok := byDir[dir]; !ok {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, dir := range dirs {
		rel, err := filepath.Rel(input, dir)
		if err != nil {
			return nil, err
		}
		files := byDir[dir]
		sort.Strings(files)

		if r.cfg.Batch.Merge {
			jobs = append(jobs, Job{
				Inputs: files,
				Output: filepath.Join(output, rel, dirName(dir)+".obj"),
			})
			continue
		}
		for _, f := range files {
			stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
			jobs = append(jobs, Job{
				Inputs: []string{f},
				Output: filepath.Join(output, rel, stem, stem+".obj"),
			})
		}
	}
	return jobs, nil
}

// matches applies the batch pattern to a file name, ignoring case.
func (r *Runner) matches(name string) bool {
	ok, err := filepath.Match(strings.ToLower(r.cfg.Batch.Pattern), strings.ToLower(name))
	return err == nil && ok
}

// dirName names a merged job after its directory. The input root itself may
// be given as "." so it is resolved first.
func dirName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	name := filepath.Base(dir)
	if name == string(filepath.Separator) || name == "." {
		return "model"
	}
	return name
}

// exists reports whether the job output is already on disk.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
