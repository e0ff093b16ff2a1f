// Package adapters implements the ports against the real world:
// subprocess probes, input-table files, the vendor filesystem layout,
// and the network.
package adapters

import (
	"context"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/ports"
	"buckgen/internal/shared"
)

// ExecEnvironmentAdapter probes the environment by invoking the
// compiler and the build tool. Probe failures are fatal for the run.
type ExecEnvironmentAdapter struct {
	CompilerBin  string
	BuildToolBin string
}

func NewExecEnvironmentAdapter() ExecEnvironmentAdapter {
	return ExecEnvironmentAdapter{
		CompilerBin:  "rustc",
		BuildToolBin: "buck2",
	}
}

func (a ExecEnvironmentAdapter) TargetTriple(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, a.CompilerBin, "-Vv").CombinedOutput()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to probe compiler target triple").
			WithCause(shared.CommandError(output, err))
	}
	triple, ok := shared.FirstLineWithPrefix(string(output), "host: ")
	if !ok {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("compiler version output has no host line")
	}
	return triple, nil
}

func (a ExecEnvironmentAdapter) CfgLines(ctx context.Context) ([]string, error) {
	output, err := exec.CommandContext(ctx, a.CompilerBin, "--print=cfg").CombinedOutput()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to probe compiler cfg flags").
			WithCause(shared.CommandError(output, err))
	}
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines, nil
}

func (a ExecEnvironmentAdapter) ProjectRoot(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, a.BuildToolBin, "root", "--kind", "project").CombinedOutput()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to query build tool project root").
			WithCause(shared.CommandError(output, err))
	}
	root := strings.TrimSpace(string(output))
	if root == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("build tool returned an empty project root")
	}
	return root, nil
}

var _ ports.EnvironmentPort = ExecEnvironmentAdapter{}
