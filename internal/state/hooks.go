package state

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/versioio/versio/internal/config"
	"github.com/versioio/versio/internal/verr"
)

// HookRunner shells out to a project's configured hook command for a
// given phase. A non-zero exit aborts the remaining write-set, the way
// the teacher's subprocess helpers treat a failing VCS subprocess.
type HookRunner interface {
	Run(ctx context.Context, p *config.Project, phase, command string) error
}

// ShellHookRunner runs hook commands through the system shell, rooted
// at each project's directory.
type ShellHookRunner struct {
	Shell string // defaults to "sh" when empty
}

// Run implements HookRunner.
func (r ShellHookRunner) Run(ctx context.Context, p *config.Project, phase, command string) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = p.Root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return verr.Wrap(verr.Internal, err, "%s hook for project %q failed: %s", phase, p.Name, stderr.String())
	}
	return nil
}
