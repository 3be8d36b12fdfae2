// Package tree edits and indexes a flow's step tree
//
// Every function in this package is pure with respect to its input: the
// tree passed in is cloned before anything is written, and a new tree is
// returned. Identifiers are recomputed from position by Regenerate, and
// NewIndex derives the flat nested step records used to address steps that
// live inside branches
package tree
