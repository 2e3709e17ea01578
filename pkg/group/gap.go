package group

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/big"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
)

// DefaultGAPPath is the GAP executable looked up on PATH.
const DefaultGAPPath = "gap"

// GAP is an Oracle backed by the GAP computer algebra system.
//
// Each call starts a GAP process, writes a script on its standard input that
// builds the group and prints its order and conjugacy classes, and parses the
// output. The process is killed when ctx is done, so a deadline interrupts a
// running closure instead of waiting for it.
//
// GAP is a single external engine; wrap it with Limit to bound the number of
// concurrent processes.
type GAP struct {
	// Path is the GAP executable. Empty means DefaultGAPPath.
	Path string

	// Args are extra command-line arguments, e.g. memory options ("-o", "4g").
	Args []string
}

// NewGAP creates a GAP oracle using the executable at path.
func NewGAP(path string, args ...string) *GAP {
	return &GAP{Path: path, Args: args}
}

// Check verifies that the GAP executable can be found.
// A missing engine is reported as ORACLE_UNAVAILABLE.
func (o *GAP) Check() error {
	_, err := o.lookPath()
	return err
}

func (o *GAP) lookPath() (string, error) {
	path := o.Path
	if path == "" {
		path = DefaultGAPPath
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeOracleUnavailable, err, "GAP executable %q not found", path)
	}
	return bin, nil
}

// Name returns "gap".
func (o *GAP) Name() string { return "gap" }

// Analyze implements Oracle.
func (o *GAP) Analyze(ctx context.Context, gens perm.GeneratorSet) (*Group, error) {
	bin, err := o.lookPath()
	if err != nil {
		return nil, err
	}

	args := append([]string{"-q", "-b"}, o.Args...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(Script(gens))
	cmd.WaitDelay = 2 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "GAP failed: %s", firstLine(stderr.String()))
		}
		return nil, errors.Wrap(errors.ErrCodeOracleUnavailable, err, "run GAP")
	}

	return ParseGAPOutput(&stdout, gens.N)
}

// Script returns the GAP program that analyses gens. It disables GAP's line
// wrapping so each permutation and integer prints on one line, then prints
// one "order" line followed by one "class" line per conjugacy class.
func Script(gens perm.GeneratorSet) string {
	var b strings.Builder
	b.WriteString("SetPrintFormattingStatus(\"*stdout*\", false);;\n")
	b.WriteString("G := Group([")
	for i, p := range gens.Perms {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteString("]);;\n")
	b.WriteString("Print(\"order \", Size(G), \"\\n\");;\n")
	b.WriteString("for c in ConjugacyClasses(G) do\n")
	b.WriteString("  Print(\"class \", Size(c), \" \", Representative(c), \"\\n\");;\n")
	b.WriteString("od;;\n")
	b.WriteString("QUIT;\n")
	return b.String()
}

// ParseGAPOutput parses the output of Script for a domain of n points.
//
// Lines that start with neither "order" nor "class" are ignored. A missing
// order line, a malformed size, or a representative outside the domain is a
// CONSISTENCY_ERROR: the engine answered, but not with a usable group.
func ParseGAPOutput(r io.Reader, n int) (*Group, error) {
	g := &Group{N: n}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "order "):
			order, ok := new(big.Int).SetString(strings.TrimSpace(line[len("order "):]), 10)
			if !ok {
				return nil, errors.New(errors.ErrCodeConsistency, "malformed order line %q", line)
			}
			g.Order = order
		case strings.HasPrefix(line, "class "):
			fields := strings.SplitN(strings.TrimSpace(line[len("class "):]), " ", 2)
			if len(fields) != 2 {
				return nil, errors.New(errors.ErrCodeConsistency, "malformed class line %q", line)
			}
			size, ok := new(big.Int).SetString(fields[0], 10)
			if !ok {
				return nil, errors.New(errors.ErrCodeConsistency, "malformed class size %q", fields[0])
			}
			rep, err := perm.Parse(fields[1], n)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeConsistency, err, "class representative %q", fields[1])
			}
			g.Classes = append(g.Classes, Class{Representative: rep, Size: size})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read GAP output: %w", err)
	}
	if g.Order == nil {
		return nil, errors.New(errors.ErrCodeConsistency, "GAP output has no order line")
	}
	return g, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
