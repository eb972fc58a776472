// Package extraction provides the domain model for turning a photographed
// receipt into a merchant invoice.
//
// The bounded context covers two workflows:
//   - Folio extraction: a receipt image is recognized and the merchant's
//     folio pattern is applied to the raw text.
//   - Invoice generation: a declarative AutomationScript is interpreted
//     against the merchant's self-service portal to obtain a document URL.
//
// Key types:
//   - MerchantAdapter: static, immutable per-merchant capability set
//   - Registry: lookup of adapters by merchant identifier
//   - AutomationScript / Step: declarative form-automation program
//   - Error / Kind: typed failure taxonomy shared by both workflows
package extraction
