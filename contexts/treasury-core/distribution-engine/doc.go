// Package distributionengine executes one-to-many distributions: it opens a
// processing record on the operation ledger, attempts every recipient in
// request order regardless of earlier failures, and closes the record once
// with the full outcome sequence. It also captures holder snapshots and
// plans proportional allocations from them.
package distributionengine
