// Package harvest implements the email-harvesting pipeline: URL
// normalization, candidate page discovery, extraction, noise filtering, and
// the batch orchestrator that fans the pipeline out across a startup's
// investor matches.
package harvest
