package core

// Principal is the authenticated caller of a request, as carried by its bearer token.
type Principal struct {
	ID           string `json:"id"`
	IsInstructor bool   `json:"is_instructor"`
}

// IsStudent reports whether the caller is an authenticated student.
func (p Principal) IsStudent() bool { return p.ID != "" && !p.IsInstructor }
