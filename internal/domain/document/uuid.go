package document

import (
	"fmt"
	"strings"
)

// DocumentTypeItem is the document type segment of an item UUID
const DocumentTypeItem = "Item"

// UUID identifies a document in a compendium pack, the world, or on an actor
type UUID struct {
	Raw          string
	Pack         string // "<scope>.<name>" for compendium documents
	ActorID      string // set for items embedded on an actor
	DocumentType string
	ID           string
}

// ParseUUID splits a document UUID. Supported shapes:
//
//	Compendium.<scope>.<pack>.<type>.<id>
//	Compendium.<scope>.<pack>.<id>    (legacy, no type)
//	<type>.<id>
//	Actor.<actorId>.<type>.<id>
func ParseUUID(raw string) (UUID, error) {
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return UUID{}, fmt.Errorf("malformed uuid %q", raw)
		}
	}

	switch {
	case parts[0] == "Compendium" && len(parts) == 5:
		return UUID{Raw: raw, Pack: parts[1] + "." + parts[2], DocumentType: parts[3], ID: parts[4]}, nil
	case parts[0] == "Compendium" && len(parts) == 4:
		return UUID{Raw: raw, Pack: parts[1] + "." + parts[2], ID: parts[3]}, nil
	case parts[0] == "Actor" && len(parts) == 4:
		return UUID{Raw: raw, ActorID: parts[1], DocumentType: parts[2], ID: parts[3]}, nil
	case parts[0] != "Compendium" && len(parts) == 2:
		return UUID{Raw: raw, DocumentType: parts[0], ID: parts[1]}, nil
	}
	return UUID{}, fmt.Errorf("malformed uuid %q", raw)
}

// IsCompendium reports whether the UUID points into a compendium pack
func (u UUID) IsCompendium() bool {
	return u.Pack != ""
}

// String returns the raw UUID
func (u UUID) String() string {
	return u.Raw
}

// CompendiumItemUUID builds the UUID of an item in a pack
func CompendiumItemUUID(pack, id string) string {
	return fmt.Sprintf("Compendium.%s.%s.%s", pack, DocumentTypeItem, id)
}

// IsItemUUID reports whether raw parses as a UUID of an item document
func IsItemUUID(raw string) bool {
	u, err := ParseUUID(raw)
	return err == nil && u.DocumentType == DocumentTypeItem
}
