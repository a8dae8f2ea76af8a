package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssnorm/archive"
	"cssnorm/state"
)

// Run is the action of "run" command: all configured passes in configured
// order.
func Run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	return run(ctx, cmd, env.Cfg.Normalize.Passes)
}

// Pass returns action of a command running a single named pass.
func Pass(name string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return run(ctx, cmd, []string{name})
	}
}

func run(ctx context.Context, cmd *cli.Command, passes []string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	if cmd.IsSet("overwrite") {
		env.Cfg.Output.Overwrite = cmd.Bool("overwrite")
	}

	n, err := NewNormalizer(env.Cfg, passes, cmd.StringSlice("ignore"), env.Rpt, log)
	if err != nil {
		return fmt.Errorf("unable to prepare normalization: %w", err)
	}

	to := dst
	if to == "" {
		to = "STDOUT"
	}
	log.Info("Processing starting", zap.String("source", src), zap.String("destination", to),
		zap.Strings("passes", n.Passes()), zap.Stringer("run", env.RunID))
	defer func(start time.Time) {
		if err == nil {
			log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	return n.Process(ctx, src, dst, os.Stdout)
}

// Process normalizes src which is a stylesheet, a directory or a zip based
// container (zip, epub). Single file result goes to dst (file or existing
// directory) or to stdout when dst is empty. Directory and archive require dst,
// their structure is reproduced there.
func (n *Normalizer) Process(ctx context.Context, src, dst string, stdout io.Writer) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found: %w", err)
	}

	if fi.IsDir() {
		if dst == "" {
			return fmt.Errorf("destination directory is required to process directory %s", src)
		}
		return n.processDir(ctx, src, dst)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for %s", src)
	}

	kind, err := archive.Detect(src)
	if err != nil {
		return fmt.Errorf("unable to read input source: %w", err)
	}
	if kind != "" {
		if dst == "" {
			return fmt.Errorf("destination directory is required to process %s container %s", kind, src)
		}
		return n.processArchive(ctx, src, kind, dst)
	}

	if dst != "" {
		if di, err := os.Stat(dst); err == nil && di.IsDir() {
			dst = filepath.Join(dst, n.OutputName(filepath.Base(src)))
		}
	}
	return n.ProcessFile(ctx, src, dst, stdout)
}

// processDir normalizes every stylesheet under dir. Failure of a single file
// does not stop processing, all failures are returned together.
func (n *Normalizer) processDir(ctx context.Context, dir, dst string) error {
	files, err := n.collect(ctx, dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		n.log.Warn("Nothing to process", zap.String("dir", dir))
		return nil
	}

	var errs error
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		src := filepath.Join(dir, rel)
		if err := n.ProcessFile(ctx, src, filepath.Join(dst, n.OutputName(rel)), nil); err != nil {
			n.log.Error("Unable to process file", zap.String("file", src), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return fmt.Errorf("%d of %d files failed: %w", len(multierr.Errors(errs)), len(files), errs)
	}
	return nil
}

// processArchive normalizes every stylesheet stored in zip container. Archive
// itself is never modified.
func (n *Normalizer) processArchive(ctx context.Context, src, kind, dst string) error {
	n.log.Debug("Processing container", zap.String("file", src), zap.String("kind", kind))
	if err := n.rpt.StoreCopy("source/"+filepath.Base(src), src); err != nil {
		n.log.Warn("Unable to store source in report", zap.String("file", src), zap.Error(err))
	}

	var errs error
	total := 0
	err := archive.Walk(src, "", n.input.IsStylesheet, func(name string, data []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++
		out := filepath.Join(dst, filepath.FromSlash(n.OutputName(name)))
		if err := n.process(data, src+"/"+name, out, nil); err != nil {
			n.log.Error("Unable to process archive entry", zap.String("archive", src), zap.String("kind", kind), zap.String("entry", name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
		return nil
	})
	if err != nil {
		return multierr.Append(errs, fmt.Errorf("unable to walk archive %s: %w", src, err))
	}
	if total == 0 {
		n.log.Warn("Nothing to process", zap.String("archive", src), zap.String("kind", kind))
	}
	if errs != nil {
		return fmt.Errorf("%d of %d files failed: %w", len(multierr.Errors(errs)), total, errs)
	}
	return nil
}

// collect returns stylesheets under dir relative to it, in natural order.
// Symbolic links are not followed.
func (n *Normalizer) collect(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			n.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() || !n.input.IsStylesheet(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}
