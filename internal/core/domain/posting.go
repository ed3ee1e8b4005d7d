package domain

// PostingAction is one effect the posting pipeline must execute.
type PostingAction string

const (
	ActionReverse PostingAction = "reverse" // Mirror the currently linked entry
	ActionPost    PostingAction = "post"    // Build and persist a fresh entry
)

// PostingDecision is the ordered list of effects for one transaction change
// event. Reversal, when present, always precedes posting.
type PostingDecision struct {
	Actions []PostingAction
}

// PostingResult reports what a posting unit actually did. ReversedEntry and
// PostedEntry are nil for the effects that did not run. Transaction is the
// document's state after the unit committed, including denormalized rate,
// functional amount and entry link; it is nil after a delete.
type PostingResult struct {
	Decision      PostingDecision
	Transaction   *Transaction
	ReversedEntry *JournalEntry
	PostedEntry   *JournalEntry
}

// IsNoop reports whether the change has no journal effect.
func (d PostingDecision) IsNoop() bool {
	return len(d.Actions) == 0
}

// NeedsReverse reports whether the decision starts with a reversal.
func (d PostingDecision) NeedsReverse() bool {
	return len(d.Actions) > 0 && d.Actions[0] == ActionReverse
}

// NeedsPost reports whether the decision ends with a fresh posting.
func (d PostingDecision) NeedsPost() bool {
	return len(d.Actions) > 0 && d.Actions[len(d.Actions)-1] == ActionPost
}

// DecidePostingActions maps a transaction change event to its journal effects.
// It is a pure function of (prior state, next state, operation) so every row of
// the state table is unit-testable without storage:
//
//	create, paid                          -> post
//	update, becomes paid                  -> post
//	update, stays paid, inputs changed    -> reverse, post
//	update, stays paid, nothing relevant  -> none
//	update, leaves paid                   -> reverse
//	delete, was paid                      -> reverse
//	anything else                         -> none
func DecidePostingActions(prior *Transaction, next *Transaction, op OperationType) PostingDecision {
	switch op {
	case OperationDelete:
		if prior != nil && prior.Status == StatusPaid {
			return PostingDecision{Actions: []PostingAction{ActionReverse}}
		}
		return PostingDecision{}
	case OperationCreate:
		if next != nil && next.Status == StatusPaid {
			return PostingDecision{Actions: []PostingAction{ActionPost}}
		}
		return PostingDecision{}
	case OperationUpdate:
		if next == nil {
			return PostingDecision{}
		}
		wasPaid := prior != nil && prior.Status == StatusPaid
		isPaid := next.Status == StatusPaid

		switch {
		case !wasPaid && isPaid:
			return PostingDecision{Actions: []PostingAction{ActionPost}}
		case wasPaid && isPaid:
			if next.PostingInputsChanged(prior) {
				return PostingDecision{Actions: []PostingAction{ActionReverse, ActionPost}}
			}
			return PostingDecision{}
		case wasPaid && !isPaid:
			return PostingDecision{Actions: []PostingAction{ActionReverse}}
		}
		return PostingDecision{}
	}
	return PostingDecision{}
}
