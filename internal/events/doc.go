// Package events delivers committed flow states to slow consumers, such as
// snapshot stores, without holding up the editor
package events
