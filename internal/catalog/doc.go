// Package catalog decodes step and flow definitions supplied by a step
// catalog or a saved editor session. Both the canonical field names and the
// older backend spellings (UUID, type, integrationId, top-level min and max
// branch counts, parameter lists) are accepted
package catalog
