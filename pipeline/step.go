package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/fedsetup/fedsetup/pkg/host"
)

// OnFailure selects how the runner reacts when a step fails.
type OnFailure int

const (
	// Abort stops the whole run at the failing step.
	Abort OnFailure = iota
	// RecordAndContinue archives the failing step's output and moves on.
	RecordAndContinue
)

func (p OnFailure) String() string {
	if p == Abort {
		return "abort"
	}
	return "record-and-continue"
}

// Step is one unit of provisioning work. Steps are built once from
// configuration and gathered facts, and are immutable afterwards.
type Step struct {
	Name      string
	Action    Action
	OnFailure OnFailure
}

// Action is a unit of work dispatched to an external collaborator through
// the host, or executed natively in-process. A non-nil error marks the
// step as failed; the output is recorded either way.
type Action interface {
	Run(ctx context.Context, h *host.Host) (host.Output, error)
}

// Validator is implemented by actions whose inputs can be checked before
// the run starts. Validation failures stop the pipeline from starting.
type Validator interface {
	Validate() error
}

// Skippable is implemented by actions whose inputs may only appear after
// earlier steps have run, or that are no-ops when their work is already
// done. A non-empty reason right before execution skips the step instead
// of failing it.
type Skippable interface {
	SkipReason(h *host.Host) string
}

var slugRe = regexp.MustCompile(`[^a-z0-9._-]+`)

// Slug returns a filesystem safe version of a step name, used to derive
// the failure artifact file names.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "step"
	}
	return s
}
