// Package snapshot archives published flow states so that earlier versions
// can be restored, for example by an undo history
package snapshot
