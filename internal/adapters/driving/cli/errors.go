package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// withHint prefixes err with what failed and, for errors an operator can
// fix, the command that fixes it.
func withHint(what string, err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotBuilt):
		return fmt.Errorf("%s: %w. Run 'weldsafe index build <corpus-dir>' first", what, err)
	case errors.Is(err, domain.ErrIndexLoad):
		return fmt.Errorf("%s: %w. Rebuild with 'weldsafe index build <corpus-dir>'", what, err)
	case errors.Is(err, domain.ErrRetrievalInconsistency):
		return fmt.Errorf("%s: %w. The index is corrupt; rebuild it", what, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
