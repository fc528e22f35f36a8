package perm

import (
	"strings"

	"resdb-tools/internal/record"
)

// CanEditInventory reports whether actorID may change records in ownerID's
// inventory.
//
// Rules:
// - Only the inventory owner edits; there is no delegation or sharing.
// - An empty actor (no configured user, missing header) never edits.
//
// Reads are not gated here: any user may browse any inventory.
func CanEditInventory(actorID, ownerID string) bool {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return false
	}
	return actorID == strings.TrimSpace(ownerID)
}

// CanEditRecord is CanEditInventory for the record's owner.
func CanEditRecord(actorID string, id record.Identity) bool {
	return CanEditInventory(actorID, id.OwnerID)
}
