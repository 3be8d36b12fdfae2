// Package util provides generic containers used by the step tree engine
//
// This package includes a comparable Set and a PathTree that indexes values
// by hierarchical string paths, so records can be found by any path prefix
package util
