package classify

import (
	"fmt"

	"retroforge/internal/services"
)

// HandlingMode selects how rename and convert planners treat cheat and
// educational discs.
type HandlingMode string

const (
	// HandlingOmit drops cheat/educational discs from plans entirely.
	HandlingOmit HandlingMode = "omit"
	// HandlingStandalone plans them as ordinary single-disc titles.
	HandlingStandalone HandlingMode = "standalone"
	// HandlingAsDisc would fold them into multi-disc sets. Its semantics are
	// not specified; planners reject it with a validation error.
	HandlingAsDisc HandlingMode = "as-disc"
)

// ParseHandlingMode validates a mode string from configuration or flags. An
// empty string selects HandlingOmit.
func ParseHandlingMode(value string) (HandlingMode, error) {
	switch HandlingMode(value) {
	case "":
		return HandlingOmit, nil
	case HandlingOmit, HandlingStandalone, HandlingAsDisc:
		return HandlingMode(value), nil
	}
	return "", services.Wrap(services.ErrValidation, "classify", "parse_mode",
		fmt.Sprintf("unknown content handling mode %q", value), nil)
}

// ErrAsDiscUnsupported is the error planners return when HandlingAsDisc is
// requested.
func ErrAsDiscUnsupported(stage string) error {
	return services.Wrap(services.ErrValidation, stage, "content_mode",
		"as-disc content handling is not supported; use omit or standalone", nil)
}
