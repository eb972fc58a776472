// Package account holds the user-facing collaborator aggregates: users,
// payment plans, credit ledger entries and login sessions.
package account
