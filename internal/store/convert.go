package store

// convert.go maps between core types and pgtype values.

import (
	"net/netip"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// toPgUUID converts a uuid to pgtype.UUID. uuid.Nil is stored as NULL.
func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// fromPgUUID converts a pgtype.UUID back. NULL becomes uuid.Nil.
func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

// optionalPgUUID converts an optional uuid. nil is stored as NULL.
func optionalPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return toPgUUID(*id)
}

// uuidPtr returns nil for NULL.
func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

// newRecordID returns a version 7 uuid. Successive calls in one process
// sort in call order.
func newRecordID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// toPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toPgInet parses a client address for an inet column.
// Returns nil, stored as NULL, when the address is missing or unparsable.
func toPgInet(s string) *netip.Addr {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &addr
}

// inetString formats a scanned inet column.
func inetString(addr *netip.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}

// textArray guarantees a non-nil slice so NOT NULL array columns receive
// '{}' rather than NULL.
func textArray(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
