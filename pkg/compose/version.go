package compose

import (
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	cerr "github.com/cockroachdb/errors"
	version "github.com/hashicorp/go-version"
)

// MinVersion is the oldest compose release the stack supports. Profiles and
// multi-file layering behave consistently from 2.20.
const MinVersion = "2.20"

// Version reports the installed compose version.
func (c *Compose) Version(rc *metis_io.RuntimeContext) (*version.Version, error) {
	bin, base, err := command()
	if err != nil {
		return nil, err
	}

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: bin,
		Args:    append(base, "version", "--short"),
		Capture: true,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return nil, cerr.Wrap(err, "query compose version")
	}

	return ParseVersion(out)
}

// ParseVersion parses `docker compose version --short` output.
func ParseVersion(raw string) (*version.Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	v, err := version.NewVersion(trimmed)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse compose version %q", strings.TrimSpace(raw))
	}
	return v, nil
}

// Preflight fails when the installed compose is missing or older than
// MinVersion.
func (c *Compose) Preflight(rc *metis_io.RuntimeContext) error {
	v, err := c.Version(rc)
	if err != nil {
		return cerr.WithHint(err, "Install Docker Compose v2: https://docs.docker.com/compose/install/")
	}

	min := version.Must(version.NewVersion(MinVersion))
	if v.LessThan(min) {
		return cerr.WithHintf(
			cerr.Newf("docker compose %s is too old, need >= %s", v, MinVersion),
			"Upgrade the Docker Compose plugin")
	}
	return nil
}
