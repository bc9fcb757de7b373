// Package models defines the core domain models for SidePot.
//
// # Entities
//
//   - User: registered account; the identity every operation acts as
//   - Group: owner plus member set; bets, debts and invites are scoped to it
//   - Invite: single-use code that adds the redeeming user to a group
//   - Bet: a proposition with two or more mutually exclusive outcomes
//   - Wager: one user's stake on one outcome, immutable once recorded
//   - Debt: virtual obligation from a loser to a winner, created at settlement
//   - ActivityEntry: append-only record of every balance change
//   - Comment: discussion attached to a bet
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers
//  2. Monetary fields use money.Money, never floats
//  3. Timestamps are Unix milliseconds
//  4. Wagers, debts and activity entries are never deleted
package models
