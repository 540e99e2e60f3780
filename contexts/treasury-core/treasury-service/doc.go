// Package treasuryservice runs the single-call treasury operations (deploy,
// burn, buyback, reward claim) and owns the treasury balance cache. All
// status handling goes through the operation ledger.
package treasuryservice
