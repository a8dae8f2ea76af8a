// Package process implements program commands: it finds stylesheets, runs
// normalization passes over them and writes results.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"cssnorm/config"
	"cssnorm/css"
	"cssnorm/normalize"
)

// Normalizer runs a configured pipeline over stylesheet files.
type Normalizer struct {
	pipeline *normalize.Pipeline
	parser   *css.Parser
	input    config.InputConfig
	output   config.OutputConfig
	rpt      *config.Report
	log      *zap.Logger
	dumps    int
}

// NewNormalizer creates normalizer running passes in order. Properties in
// ignore are added to configured ignore list of every pass.
func NewNormalizer(cfg *config.Config, passes, ignore []string, rpt *config.Report, log *zap.Logger) (*Normalizer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(passes) == 0 {
		return nil, errors.New("no normalization passes requested")
	}

	pp := make([]normalize.Pass, 0, len(passes))
	for _, name := range passes {
		opts := normalize.Options{Ignore: slices.Concat(cfg.Normalize.Ignore(name), ignore)}
		p, err := normalize.NewPass(name, opts, log)
		if err != nil {
			return nil, err
		}
		pp = append(pp, p)
	}

	return &Normalizer{
		pipeline: normalize.NewPipeline(log, pp...),
		parser:   css.NewParser(log),
		input:    cfg.Input,
		output:   cfg.Output,
		rpt:      rpt,
		log:      log,
	}, nil
}

// Passes returns names of passes in execution order.
func (n *Normalizer) Passes() []string {
	return n.pipeline.Passes()
}

// Normalize decodes, parses and normalizes a single stylesheet. Output is
// always UTF-8, so @charset rule, when present, is updated accordingly.
func (n *Normalizer) Normalize(data []byte, name string) (*css.Stylesheet, []normalize.PassStats, error) {
	text, charset, err := decode(data, n.input.Charset)
	if err != nil {
		return nil, nil, err
	}
	if charset != "UTF-8" {
		n.log.Debug("Stylesheet decoded", zap.String("file", name), zap.String("charset", charset))
	}

	sheet := n.parser.Parse(text, name)
	for _, w := range sheet.Warnings {
		n.log.Warn("Stylesheet problem", zap.String("file", name), zap.String("problem", w))
	}
	if sheet.Charset != "" {
		sheet.Charset = "UTF-8"
	}
	return sheet, n.pipeline.Run(sheet), nil
}

// Write serializes stylesheet with configured indentation.
func (n *Normalizer) Write(w io.Writer, sheet *css.Stylesheet) error {
	_, err := sheet.Write(w, n.output.Indent)
	return err
}

// ProcessFile normalizes src and writes result to dst, or to out when dst is
// empty.
func (n *Normalizer) ProcessFile(ctx context.Context, src, dst string, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if err := n.rpt.StoreCopy("source/"+filepath.Base(src), src); err != nil {
		n.log.Warn("Unable to store source in report", zap.String("file", src), zap.Error(err))
	}
	return n.process(data, src, dst, out)
}

// process normalizes stylesheet data read from src.
func (n *Normalizer) process(data []byte, src, dst string, out io.Writer) error {
	sheet, stats, err := n.Normalize(data, src)
	if err != nil {
		return fmt.Errorf("unable to normalize %s: %w", src, err)
	}

	n.dump(sheet, src)

	var buf bytes.Buffer
	if err := n.Write(&buf, sheet); err != nil {
		return fmt.Errorf("unable to serialize %s: %w", src, err)
	}

	fields := []zap.Field{zap.String("from", src), zap.Int("declarations", sheet.Declarations())}
	for _, ps := range stats {
		fields = append(fields, zap.Int(ps.Name, ps.Transformed))
	}

	if dst == "" {
		if _, err := out.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("unable to write result: %w", err)
		}
		n.log.Debug("Stylesheet normalized", fields...)
		return nil
	}

	if err := n.writeFile(dst, buf.Bytes()); err != nil {
		return err
	}
	n.log.Info("Stylesheet normalized", append(fields, zap.String("to", dst))...)
	return nil
}

// dump puts tree of normalized stylesheet into debug report, if any.
func (n *Normalizer) dump(sheet *css.Stylesheet, src string) {
	if n.rpt == nil {
		return
	}
	n.dumps++
	n.rpt.StoreData(fmt.Sprintf("tree/%03d-%s.txt", n.dumps, path.Base(filepath.ToSlash(src))), []byte(sheet.Dump()))
}

func (n *Normalizer) writeFile(dst string, data []byte) error {
	if _, err := os.Stat(dst); err == nil && !n.output.Overwrite {
		return fmt.Errorf("output file already exists: %s", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	return nil
}

// OutputName returns name of the file produced for src, with configured
// extension replacing the source one.
func (n *Normalizer) OutputName(src string) string {
	if n.output.Extension == "" {
		return src
	}
	base := src
	for _, ext := range n.input.Extensions {
		if len(base) > len(ext) && strings.EqualFold(base[len(base)-len(ext):], ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	if base == src {
		base = strings.TrimSuffix(src, filepath.Ext(src))
	}
	return base + n.output.Extension
}
