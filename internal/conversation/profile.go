package conversation

// Profile accumulates what the visitor told us during onboarding. Fields are filled strictly
// left to right and never overwritten within a session.
type Profile struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
	UseCase string `json:"use_case,omitempty"`
}

// Complete reports whether every field has been collected.
func (p Profile) Complete() bool {
	return p.Name != "" && p.Company != "" && p.Role != "" && p.UseCase != ""
}

// NextField returns the name of the first unset field, or "" when the profile is complete.
func (p Profile) NextField() string {
	switch {
	case p.Name == "":
		return "name"
	case p.Company == "":
		return "company"
	case p.Role == "":
		return "role"
	case p.UseCase == "":
		return "use_case"
	default:
		return ""
	}
}
