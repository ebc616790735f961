package domain

// User is the profile returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Role      string `json:"rol"`
	Email     string `json:"email"`
}

// RoleRecord is the role row embedded in a Reader.
type RoleRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Reader is a library member as seen by staff. Active is false for
// suspended readers, who cannot log in.
type Reader struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"nombre"`
	LastName  *string    `json:"apellido"`
	Active    bool       `json:"estado"`
	Role      RoleRecord `json:"rol"`
}

// FullName joins first and last name, tolerating a missing last name.
func (r Reader) FullName() string {
	if r.LastName == nil || *r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + *r.LastName
}

// Registration is the sign-up payload.
type Registration struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
