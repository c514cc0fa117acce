// AngelaMos | 2026
// status.go

// Package lifecycle owns the status of a Doubt. Status moves
// pending → answered → resolved and never backwards.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

var ErrIllegalTransition = errors.New("illegal transition")

// Transition validates a move from one status to another. Staying in place
// is allowed.
func Transition(from, to domain.DoubtStatus) error {
	if from.Rank() < 0 || to.Rank() < 0 {
		return fmt.Errorf("%q -> %q: unknown status: %w", from, to, ErrIllegalTransition)
	}
	if to.Rank() < from.Rank() {
		return fmt.Errorf("%q -> %q: status cannot regress: %w", from, to, ErrIllegalTransition)
	}
	if from == domain.StatusPending && to == domain.StatusResolved {
		return fmt.Errorf("%q -> %q: doubt has no answers: %w", from, to, ErrIllegalTransition)
	}
	return nil
}

// Derive computes the status implied by the authoritative answer count.
// It never lowers current, so an answer removed elsewhere leaves an
// answered doubt answered.
func Derive(current domain.DoubtStatus, answerCount int) domain.DoubtStatus {
	if current.Rank() < 0 {
		current = domain.StatusPending
	}
	if current == domain.StatusPending && answerCount > 0 {
		return domain.StatusAnswered
	}
	return current
}

// Resolve applies the explicit resolution action. Resolving a resolved
// doubt is a no-op reported with changed == false.
func Resolve(current domain.DoubtStatus) (next domain.DoubtStatus, changed bool, err error) {
	switch current {
	case domain.StatusAnswered:
		return domain.StatusResolved, true, nil
	case domain.StatusResolved:
		return domain.StatusResolved, false, nil
	case domain.StatusPending:
		return current, false, fmt.Errorf("resolve pending doubt: %w", ErrIllegalTransition)
	default:
		return current, false, fmt.Errorf("resolve %q: unknown status: %w", current, ErrIllegalTransition)
	}
}

// Max returns the later of two statuses.
func Max(a, b domain.DoubtStatus) domain.DoubtStatus {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
