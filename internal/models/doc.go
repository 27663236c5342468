// Package models defines the core domain models for Spendwise.
//
// # Models
//
//   - Group: a shared-expense group owned by a user
//   - Member: a participant in a group, identified by an opaque ID
//   - Expense: a payment made by one member and shared among members
//   - Settlement: a recorded payment between two members (append-only)
//   - User: a registered account that owns groups
//   - Snapshot: a consistent read of one group's members, expenses and settlements
//
// Balances and suggested settlements are never stored; they are derived by
// the calculator package from a Snapshot on every read.
//
// Relationships use ID strings instead of pointers. All amounts are
// money.Amount (integer cents).
package models
