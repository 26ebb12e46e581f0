package inventory

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugscan/pkg/semver"
)

// ToolProbe checks whether a system tool is present and at what version.
// A (nil, nil) result means the tool exists but its version is unknown.
// Implementations must never treat a missing tool as anything other than an
// error return; the builder records it as absent.
type ToolProbe interface {
	Check(ctx context.Context, name string) (*semver.Version, error)
}

// ExecProbe probes tools by locating them on PATH and invoking
// "<tool> --version".
type ExecProbe struct{}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// Check implements ToolProbe.
func (p *ExecProbe) Check(ctx context.Context, name string) (*semver.Version, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.Wrapf(err, "tool %q not found on PATH", name)
	}

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		// Present but uncooperative. Version stays unknown.
		return nil, nil
	}

	return parseVersionOutput(string(out)), nil
}

// parseVersionOutput extracts the first semver-looking token from a tool's
// --version output. Returns nil when nothing parseable is found.
func parseVersionOutput(out string) *semver.Version {
	firstLine := out
	if idx := strings.IndexByte(out, '\n'); idx != -1 {
		firstLine = out[:idx]
	}

	match := versionPattern.FindStringSubmatch(firstLine)
	if match == nil {
		return nil
	}

	version, err := semver.Parse(match[1])
	if err != nil {
		return nil
	}
	return version
}
