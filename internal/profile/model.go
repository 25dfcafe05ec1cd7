package profile

// Profile status values. The transition is one-directional: once Complete,
// nothing moves a profile back to Incomplete.
const (
	StatusIncomplete = "Incomplete"
	StatusComplete   = "Complete"
)

// Profile represents a row in the profiles table: one pupil assessment.
type Profile struct {
	ID               string
	Name             string
	GroupName        string
	ProfilerTypeName string
	Status           string
}

// Answer represents a row in the answers table. The domain is copied from
// the catalog at write time; later catalog edits never touch stored rows.
type Answer struct {
	ID        string
	ProfileID string
	Question  string
	Score     int
	Domain    string
}
