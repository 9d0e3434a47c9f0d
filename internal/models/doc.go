// Package models defines the core domain models for expense-share.
//
// # Models
//
//   - User: Registered account with credentials and active session tokens
//   - Expense: A named shared-bill group with one owner and participants
//   - Transaction: A single payment recorded against an Expense
//
// # Design Principles
//
//  1. **No serialization of secrets**: password hashes and session tokens
//     never appear in outward projections; use PublicUser for responses.
//  2. **Avoid circular references**: relationships are ID strings, not
//     pointers, and are expanded at the boundary when needed.
//  3. **Storage-agnostic**: models carry no database concerns; defaults
//     (IDs, timestamps) are filled in by the store on insert.
package models
