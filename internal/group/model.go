package group

// DefaultEmoji is used when a group is created without an icon.
const DefaultEmoji = "\U0001F9E0"

// Group represents a row in the groups table, typically a class or cohort.
// The access token gates self-service profile creation and is compared by
// equality, not cryptographically verified.
type Group struct {
	Name             string
	DisplayAs        string
	Token            string
	Archived         bool
	ProfilerTypeName string
	HasProfiles      bool
	Emoji            string
}

// WithCount pairs a group with its number of Complete profiles.
type WithCount struct {
	Group
	ProfileCount int
}

// Update describes a partial group mutation; nil fields are left unchanged.
type Update struct {
	Name      *string
	DisplayAs *string
	Archived  *bool
	Emoji     *string
}
