package domain

// MirrorAction is the kind of change a MirrorOp applies.
type MirrorAction string

const (
	MirrorCreate MirrorAction = "CREATE"
	MirrorUpdate MirrorAction = "UPDATE"
	MirrorDelete MirrorAction = "DELETE"
)

// MirrorOp is one step of a mirror synchronization plan.
//
// For MirrorCreate, Split is the new transfer split and Mirror is nil.
// For MirrorUpdate, Split is the new transfer split and Mirror the mirror to
// update to -Split.Amount(). For MirrorDelete, Split is the removed transfer
// split and Mirror the mirror to delete.
type MirrorOp struct {
	Action          MirrorAction
	TargetAccountID AccountID
	Split           SplitLine
	Mirror          *Transaction
}

// PlanMirrorSync diffs the transfer splits of a source before and after an
// edit against the mirrors that currently exist, keyed by target account.
//
// The plan lists every delete first, in old split order, followed by one
// update or create per transfer in new split order. Accounts that transfer
// neither before nor after are left out. A transfer to an account that was
// removed and re-added in the same edit reuses the existing mirror.
func PlanMirrorSync(oldSplits, newSplits []SplitLine, existing []*Transaction) []MirrorOp {
	mirrors := make(map[AccountID]*Transaction, len(existing))
	for _, m := range existing {
		if _, seen := mirrors[m.AccountID()]; !seen {
			mirrors[m.AccountID()] = m
		}
	}

	newTargets := make(map[AccountID]struct{})
	for _, s := range newSplits {
		if s.IsTransfer() {
			newTargets[s.transferTarget()] = struct{}{}
		}
	}

	var ops []MirrorOp
	for _, s := range oldSplits {
		if !s.IsTransfer() {
			continue
		}
		target := s.transferTarget()
		if _, kept := newTargets[target]; kept {
			continue
		}
		m, ok := mirrors[target]
		if !ok {
			continue
		}
		ops = append(ops, MirrorOp{Action: MirrorDelete, TargetAccountID: target, Split: s, Mirror: m})
		delete(mirrors, target)
	}

	for _, s := range newSplits {
		if !s.IsTransfer() {
			continue
		}
		target := s.transferTarget()
		if m, ok := mirrors[target]; ok {
			ops = append(ops, MirrorOp{Action: MirrorUpdate, TargetAccountID: target, Split: s, Mirror: m})
			continue
		}
		ops = append(ops, MirrorOp{Action: MirrorCreate, TargetAccountID: target, Split: s})
	}
	return ops
}
