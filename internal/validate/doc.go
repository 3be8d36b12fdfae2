// Package validate holds the default placement rules consulted before a
// step tree is edited: start steps head a flow, end steps close their
// sequence, and branch counts stay within what a step declares
package validate
