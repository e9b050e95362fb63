// Package workbench runs simulation jobs against the engines.
//
// A Job names one engine operation (or the full edit → PCR → sequencing →
// gel workflow) together with its genome and parameters. Run executes a
// single job on its own seeded PRNG; RunBatch streams many jobs through a
// bounded worker pool and hands outcomes to a visit callback in job order.
package workbench
