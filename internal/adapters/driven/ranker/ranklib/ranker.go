// Package ranklib runs a trained RankLib model over feature files.
package ranklib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Verify interface compliance.
var _ driven.Ranker = (*Ranker)(nil)

// maxStderr bounds the process output quoted in errors.
const maxStderr = 2048

// Config locates the Java runtime, the RankLib jar and the model.
type Config struct {
	// Java is the Java executable (default: java).
	Java string

	// Jar is the RankLib jar file.
	Jar string

	// Model is the trained ranking model.
	Model string

	// ExtraArgs are passed to the JVM before -jar.
	ExtraArgs []string
}

// Ranker invokes RankLib as an external process.
type Ranker struct {
	cfg Config
}

// New creates a ranker. Jar and Model must be set.
func New(cfg Config) (*Ranker, error) {
	if cfg.Java == "" {
		cfg.Java = "java"
	}
	if cfg.Jar == "" || cfg.Model == "" {
		return nil, fmt.Errorf("%w: ranker needs a jar and a model", domain.ErrRankerUnavailable)
	}
	return &Ranker{cfg: cfg}, nil
}

// Rank runs the model over featurePath and writes indri-format rankings to
// outputPath. The process is not retried.
func (r *Ranker) Rank(ctx context.Context, featurePath, outputPath string) error {
	for _, f := range []string{r.cfg.Jar, r.cfg.Model, featurePath} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrRankerFailed, err)
		}
	}

	args := r.args(featurePath, outputPath)
	logger.Debug("Running %s %s", r.cfg.Java, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.cfg.Java, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", domain.ErrRankerFailed, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: exit status %d: %s",
				domain.ErrRankerFailed, exitErr.ExitCode(), tail(stderr.String()))
		}
		return fmt.Errorf("%w: %w", domain.ErrRankerFailed, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("%w: ranker wrote no output: %w", domain.ErrMalformedRankerOutput, err)
	}
	return nil
}

func (r *Ranker) args(featurePath, outputPath string) []string {
	args := append([]string(nil), r.cfg.ExtraArgs...)
	return append(args,
		"-jar", r.cfg.Jar,
		"-load", r.cfg.Model,
		"-rank", featurePath,
		"-indri", outputPath,
	)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
