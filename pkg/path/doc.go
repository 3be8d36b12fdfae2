// Package path addresses nodes inside recursive documents
//
// A Path is an ordered list of segments. Numeric segments index into slices
// and every other segment is a map key. The same vocabulary addresses steps
// inside a flow's step tree, so a Path produced by the nested step index can
// be applied both to typed step trees and to their decoded JSON form
package path
