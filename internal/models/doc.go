// Package models defines the core domain models for spendsplit.
//
// # Model Groups
//
// Personal finance:
//   - User: registered account
//   - Category: income/expense bucket with an optional budget
//   - Transaction: a single income or expense entry
//
// Shared expenses:
//   - Friendship: a friend request/connection between two users
//   - Group: a set of users who share expenses, with a running ledger
//   - Expense: one spending event, group-scoped or one-off, owning Participants
//   - GroupBalance: cumulative net balance per (group, user)
//   - Settlement: a derived directed payment recommendation for a scope
//
// # Design Principles
//
// 1. All money values are shopspring decimals; float arithmetic never touches
//    the ledger or the settlement solver.
// 2. Relationships use ID strings, not pointers, to avoid circular references.
// 3. Settlement scope is a tagged variant (Scope), not a nullable foreign key,
//    so the group vs one-off handling stays exhaustive.
package models
