// Package pipeline drives import, atlas minification and export for single
// jobs and whole directory trees.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/objminify/internal/config"
	"github.com/Faultbox/objminify/internal/logger"
	"github.com/Faultbox/objminify/pkg/atlas"
	"github.com/Faultbox/objminify/pkg/mesh"
	"github.com/Faultbox/objminify/pkg/wavefront"
)

// Job converts one or more geometry files into a single output model.
type Job struct {
	Inputs []string
	Output string
}

// Result reports what happened to a job.
type Result struct {
	Job     Job
	Stats   mesh.Stats
	Layout  *atlas.Layout // nil when minification is disabled
	Skipped bool          // output already existed
	Err     error
}

// Runner executes jobs with one configuration.
type Runner struct {
	cfg      *config.Config
	read     wavefront.Options
	exporter *wavefront.Exporter
	minify   atlas.Options
	log      *zap.Logger
}

// New validates cfg and returns a runner for it.
func New(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := wavefront.ParseMode(cfg.Export.Mode)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:  cfg,
		read: wavefront.Options{Encoding: cfg.Source.Encoding},
		exporter: &wavefront.Exporter{
			Mode:         mode,
			MaterialFile: cfg.Export.MaterialFile,
		},
		minify: atlas.Options{
			TextureName:  cfg.Minify.TextureName,
			MaterialName: cfg.Minify.MaterialName,
			Strict:       cfg.Minify.Strict,
			Padding:      cfg.Minify.Padding,
		},
		log: logger.Log,
	}, nil
}

// Run imports every input, merges them, minifies the textures and writes the
// result. The context is checked between stages.
func (r *Runner) Run(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	res.Err = r.run(ctx, job, &res)
	return res
}

func (r *Runner) run(ctx context.Context, job Job, res *Result) error {
	if len(job.Inputs) == 0 {
		return fmt.Errorf("job %s has no inputs", job.Output)
	}
	log := r.log.With(zap.String("output", job.Output))

	models := make([]*mesh.Model, 0, len(job.Inputs))
	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		done := logger.Timed("import", zap.String("input", in))
		model, err := wavefront.ReadFile(in, r.read)
		done()
		if err != nil {
			return fmt.Errorf("importing %s: %w", in, err)
		}
		models = append(models, model)
	}

	model := models[0]
	if len(models) > 1 {
		model = mesh.Merge(models...)
	}

	if r.cfg.Minify.Enabled {
		if err := ctx.Err(); err != nil {
			return err
		}
		done := logger.Timed("minify", zap.Int("textures", len(model.UsedTextures())))
		layout, err := atlas.Minify(model, r.minify)
		done()
		if err != nil {
			return fmt.Errorf("minifying %s: %w", job.Output, err)
		}
		res.Layout = layout
		if layout.Skipped > 0 {
			log.Warn("meshes without texture left untouched", zap.Int("meshes", layout.Skipped))
		}
		log.Debug("atlas packed",
			zap.Int("width", layout.Size.X),
			zap.Int("height", layout.Size.Y),
			zap.Int("regions", len(layout.Placements)),
		)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	done := logger.Timed("export", zap.String("path", job.Output))
	err := r.exporter.Export(model, job.Output)
	done()
	if err != nil {
		return fmt.Errorf("exporting %s: %w", job.Output, err)
	}

	res.Stats = model.Stats()
	return nil
}
