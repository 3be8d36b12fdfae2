// Package flows owns the set of flows being edited. Every structural edit
// runs clone, mutate, regenerate, reindex and swap as one critical section,
// so readers only ever see complete states
package flows
