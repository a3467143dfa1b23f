package checkout

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
)

// Scope narrows which records a query may return. A nil UserID matches all
// records. Scopes never exclude soft-deleted rows.
type Scope struct {
	UserID *string
}

// All reports whether the scope matches every record.
func (s Scope) All() bool {
	return s.UserID == nil
}

// Matches evaluates the scope against a single record.
func (s Scope) Matches(r Record) bool {
	if s.UserID == nil {
		return true
	}
	return r.UserID == *s.UserID
}

// ScopeFor returns the row visibility rule for the current user.
// Staff only observe their own records, administrators observe everything.
func ScopeFor(current *user.User) (Scope, error) {
	if current == nil {
		return Scope{}, ErrUnauthorized
	}

	switch current.Role {
	case user.RoleStaff:
		id := current.ID
		return Scope{UserID: &id}, nil
	case user.RoleAdmin:
		return Scope{}, nil
	}
	return Scope{}, fmt.Errorf("%w: %s", user.ErrInvalidRole, current.Role)
}

// LocationURL builds the map query link for a pair of coordinates.
func LocationURL(latitude, longitude string) string {
	return "https://www.google.com/maps?q=" + latitude + "," + longitude
}

// RenderLocation renders the "View Location" link for a record. Coordinates are
// embedded as stored; no range check is applied.
func RenderLocation(r Record) string {
	return "<a href='" + LocationURL(r.Latitude, r.Longitude) + "' target='_blank'>View Location</a>"
}

// DateRange holds optional inclusive calendar-date bounds.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty strings leave a bound open.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		r.From = &t
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		r.To = &t
	}
	return r, nil
}

// IsOpen reports whether neither bound is set.
func (d DateRange) IsOpen() bool {
	return d.From == nil && d.To == nil
}

// Contains compares the calendar date of t, taken in loc, against the bounds.
func (d DateRange) Contains(t time.Time, loc *time.Location) bool {
	day := calendarDate(t.In(loc))
	if d.From != nil && day.Before(calendarDate(*d.From)) {
		return false
	}
	if d.To != nil && day.After(calendarDate(*d.To)) {
		return false
	}
	return true
}

// ApplyDateRange keeps the records whose attendance date falls inside r.
// An open range returns the input unchanged.
func ApplyDateRange(records []Record, r DateRange, loc *time.Location) []Record {
	if r.IsOpen() {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.AttendanceTime, loc) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CanShowManualCreateButton reports whether the self-report shortcut is offered.
// Administrators manage records through the regular form instead.
func CanShowManualCreateButton(current *user.User) bool {
	return current.IsStaff()
}

// CanExport reports whether the user may export the listed records.
func CanExport(current *user.User) bool {
	return current.IsAdmin()
}

// CanSearchByUserName reports whether the user-name search box applies.
func CanSearchByUserName(current *user.User) bool {
	return current.IsAdmin()
}

// HeaderActionsFor lists the page-level actions offered to the current user.
func HeaderActionsFor(current *user.User, manualCreateURL string) HeaderActions {
	actions := HeaderActions{
		CanCreate: CanShowManualCreateButton(current),
		CanExport: CanExport(current),
	}
	if actions.CanCreate {
		actions.CreateURL = &manualCreateURL
	}
	return actions
}
