// Package invoicing holds the persisted side of invoice generation: the
// invoices a user has obtained, the fiscal data used to request them and
// the establishments where purchases happen.
package invoicing
