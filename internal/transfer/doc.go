// Package transfer downloads resolved objects to the local filesystem.
//
// Each object is fetched with a head request for its size followed by a get,
// written to a temporary file next to its destination and renamed into place
// once complete. Batches run sequentially and never stop at a failed object;
// every outcome is recorded in a Tally.
package transfer
