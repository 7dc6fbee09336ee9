// objminify converts Wavefront models and packs their textures into a
// single atlas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/objminify/internal/config"
	"github.com/Faultbox/objminify/internal/logger"
	"github.com/Faultbox/objminify/internal/pipeline"
	"github.com/Faultbox/objminify/pkg/wavefront"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	switch command {
	case "minify", "m":
		err = cmdMinify(ctx, cfg, args[1:])
	case "batch", "b":
		err = cmdBatch(ctx, cfg, args[1:])
	case "watch", "w":
		err = cmdWatch(ctx, cfg, args[1:])
	case "info":
		err = cmdInfo(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		err = errUsage
	}

	stop()
	logger.Sync()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func printUsage() {
	fmt.Println(`objminify - Wavefront OBJ converter and texture atlas packer

Usage:
  objminify [flags] <command> [arguments]

Commands:
  minify <in.obj>... <out.obj>   Merge inputs, pack textures, export one model
  batch [input] [output]         Convert every model below a directory
  watch [input] [output]         Batch, then rebuild models whose files change
  info <in.obj>                  Show meshes, materials and textures

Flags:
  -config <file>    Config file (default ./objminify.yaml or ./config.yaml)
  -debug            Enable debug logging
  -workers <n>      Parallel batch jobs (default: one per CPU)
  -mode <mode>      Export mode: dedup or flat
  -merge            Merge all models of a directory into one job
  -force            Reprocess jobs whose output already exists
  -strict           Fail on meshes without a texture
  -encoding <name>  Source text encoding (utf-8, euc-kr, shift_jis)

Examples:
  objminify minify house.obj export/combined.obj
  objminify -mode flat minify a.obj b.obj export/ab.obj
  objminify -workers 8 -merge batch models export
  objminify info house.obj`)
}

func cmdMinify(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: objminify minify <in.obj>... <out.obj>")
		return errUsage
	}

	r, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	job := pipeline.Job{Inputs: args[:len(args)-1], Output: args[len(args)-1]}
	res := r.Run(ctx, job)
	if res.Err != nil {
		return res.Err
	}

	fmt.Printf("Wrote %s (%d meshes, %d faces)\n", job.Output, res.Stats.Meshes, res.Stats.Faces)
	if res.Layout != nil && len(res.Layout.Placements) > 0 {
		fmt.Printf("Atlas: %dx%d from %d textures\n",
			res.Layout.Size.X, res.Layout.Size.Y, len(res.Layout.Placements))
	}
	return nil
}

// dirs returns the input and output directories from args, falling back to
// the config.
func dirs(cfg *config.Config, args []string) (string, string) {
	input, output := cfg.Input, cfg.Output
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	return input, output
}

func cmdBatch(ctx context.Context, cfg *config.Config, args []string) error {
	r, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	input, output := dirs(cfg, args)
	if _, err := os.Stat(input); err != nil {
		return err
	}

	sum, err := r.Batch(ctx, input, output)
	if sum != nil {
		fmt.Print(pipeline.BatchReport(sum))
	}
	return err
}

func cmdWatch(ctx context.Context, cfg *config.Config, args []string) error {
	r, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	input, output := dirs(cfg, args)
	logger.Info("watch mode, press Ctrl+C to stop", zap.String("input", input), zap.String("output", output))
	return r.Watch(ctx, input, output)
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objminify info <in.obj>")
		return errUsage
	}

	for _, path := range args {
		model, err := wavefront.ReadFile(path, wavefront.Options{Encoding: cfg.Source.Encoding})
		if err != nil {
			return err
		}
		fmt.Printf("Model: %s\n", path)
		fmt.Print(pipeline.ModelInfo(model))
	}
	return nil
}
