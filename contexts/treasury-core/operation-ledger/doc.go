// Package operationledger owns the treasury operation records, their paired
// audit entries, and the pending/processing -> terminal status machine every
// other treasury module goes through to mutate operation state.
package operationledger
