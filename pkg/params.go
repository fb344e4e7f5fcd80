package pkg

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// PathUUID reads a uuid route variable. Malformed ids are reported as not ok,
// and callers answer those with 404 like any other unknown row.
func PathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	return ParseUUID(mux.Vars(r)[name])
}

func ParseUUID(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUIDs parses a comma separated list of ids, skipping blanks.
func QueryUUIDs(raw string) ([]uuid.UUID, bool) {
	var ids []uuid.UUID
	for _, part := range SplitNonEmpty(raw) {
		id, ok := ParseUUID(part)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp accepts RFC 3339 timestamps and plain dates, the latter
// read as local midnight in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return ParseDate(s, loc)
}
