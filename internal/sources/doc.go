// Package sources fetches the two documents an extension repository publishes:
// the repo.json descriptor, which names the repository and pins its signing
// key fingerprint, and the index.min.json listing of available extensions.
//
// Fetch failures are always returned as errors. Callers that follow the
// "no descriptor" convention treat any error from FetchRepoDetails as absence.
package sources
