// Package secrets redacts credentials from text before it leaves the process.
//
// Source text submitted for generation is scrubbed before it is placed in a
// prompt, and raw model output is scrubbed before it is logged.
package secrets
