package models

// Snapshot is a consistent view of one group, read in a single transaction.
type Snapshot struct {
	Group       *Group
	Expenses    []*Expense
	Settlements []*Settlement
}
