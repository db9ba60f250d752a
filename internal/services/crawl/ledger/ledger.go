// Package ledger tracks which item ids a partition already holds during one task
package ledger

// Ledger is a per task id set. It is not safe for concurrent use; each task owns its own
type Ledger struct {
	ids      map[int64]struct{}
	existing int
}

// New seeds a ledger with the ids already persisted for the partition
func New(known []int64) *Ledger {
	l := &Ledger{ids: make(map[int64]struct{}, len(known))}
	for _, id := range known {
		l.ids[id] = struct{}{}
	}
	l.existing = len(l.ids)
	return l
}

// Has reports whether id is known
func (l *Ledger) Has(id int64) bool {
	_, ok := l.ids[id]
	return ok
}

// Mark records id and reports whether it was new
func (l *Ledger) Mark(id int64) bool {
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

// Existing is the number of distinct ids the ledger started with
func (l *Ledger) Existing() int { return l.existing }

// Len is the number of distinct ids known now
func (l *Ledger) Len() int { return len(l.ids) }

// Added is how many ids were marked new since New
func (l *Ledger) Added() int { return len(l.ids) - l.existing }
