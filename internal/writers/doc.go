// Package writers turns workbench outcomes into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (text report, FASTQ, JSON/JSONL/YAML).
//   - Engines stay domain-only; the workbench stays orchestration-only.
//   - JSON, JSONL and YAML go through pkg/api (v1) for a stable wire format.
package writers
