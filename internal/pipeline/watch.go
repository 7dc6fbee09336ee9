package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchedExts are the file types that can change a job's output.
var watchedExts = map[string]bool{
	".obj": true, ".mtl": true,
	".png": true, ".jpg": true, ".jpeg": true, ".tga": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true, ".gif": true,
}

// Watch runs a batch over input and then reruns the jobs of every directory
// whose geometry, material or image files change, until ctx is cancelled.
// Changes are collected for the configured debounce period before a rerun.
func (r *Runner) Watch(ctx context.Context, input, output string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	skip, _ := filepath.Abs(output)
	if err := addTree(w, input, skip); err != nil {
		return err
	}

	if _, err := r.Batch(ctx, input, output); err != nil {
		r.log.Warn("initial batch had failures", zap.Error(err))
	}
	r.log.Info("watching for changes", zap.String("input", input))

	debounce := r.cfg.Batch.WatchDebounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	dirty := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if under(e.Name, skip) {
				continue
			}
			if e.Has(fsnotify.Create) {
				if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
					if err := addTree(w, e.Name, skip); err != nil {
						r.log.Warn("cannot watch directory", zap.String("dir", e.Name), zap.Error(err))
					}
					continue
				}
			}
			if !watchedExts[strings.ToLower(filepath.Ext(e.Name))] {
				continue
			}
			r.log.Debug("change", zap.String("path", e.Name), zap.Stringer("op", e.Op))
			dirty[filepath.Dir(e.Name)] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			r.rebuild(ctx, input, output, dirty)
			dirty = make(map[string]bool)
		}
	}
}

// rebuild reruns the jobs with an input in, or below, a dirty directory.
// Texture folders next to a model count as part of its directory.
func (r *Runner) rebuild(ctx context.Context, input, output string, dirty map[string]bool) {
	jobs, err := r.Discover(input, output)
	if err != nil {
		r.log.Error("rediscovering jobs", zap.Error(err))
		return
	}

	var affected []Job
	for _, job := range jobs {
		for _, in := range job.Inputs {
			if touches(filepath.Dir(in), dirty) {
				affected = append(affected, job)
				break
			}
		}
	}
	if len(affected) == 0 {
		return
	}
	if _, err := r.RunJobs(ctx, affected, false); err != nil {
		r.log.Warn("rebuild had failures", zap.Error(err))
	}
}

func touches(dir string, dirty map[string]bool) bool {
	for d := range dirty {
		if under(d, dir) {
			return true
		}
	}
	return false
}

// under reports whether path is dir or lies inside it.
func under(path, dir string) bool {
	if dir == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return abs == absDir || strings.HasPrefix(abs, absDir+string(filepath.Separator))
}

// addTree watches root and all directories below it, except skip.
func addTree(w *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && under(path, skip) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
