// Package api defines the data types shared by the step tree engine
//
// This package contains steps, branches, flows, the derived nested step
// records, the published collection state, and the identifier scheme that
// ties every step to its position within a flow
package api
