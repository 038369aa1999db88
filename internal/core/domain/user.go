package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the account payload the backend returns on login, refresh and
// profile updates.
type User struct {
	ID             ID     `json:"id"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Address        string `json:"address,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Bio            string `json:"bio,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	// Items is only present on public profile responses.
	Items []Product `json:"items,omitempty"`
}
