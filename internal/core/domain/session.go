package domain

import "strings"

const (
	// DefaultAvatar is stored whenever no profile picture is known.
	DefaultAvatar = "/default-avatar.png"
	// DefaultItemImage is shown for products without images.
	DefaultItemImage = "/default-item.png"
)

// Session is the logged-in identity persisted in client storage.
type Session struct {
	Token       string `json:"token"`
	UserID      string `json:"id_user"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Bio         string `json:"bio"`
	CreatedAt   string `json:"created_at"`
	Role        string `json:"role"`
}

// Complete reports whether both halves of the identity are present.
func (s Session) Complete() bool {
	return s.Token != "" && s.UserID != ""
}

// Partial reports whether exactly one of token and user id is set.
func (s Session) Partial() bool {
	return (s.Token == "") != (s.UserID == "")
}

// SessionFromUser builds a session for a freshly issued token. Name falls
// back to the local part of the email address.
func SessionFromUser(token string, u User) Session {
	name := u.Name
	if name == "" {
		name, _, _ = strings.Cut(u.Email, "@")
	}
	role := u.Role
	if role == "" {
		role = RoleUser
	}
	return Session{
		Token:       token,
		UserID:      u.ID.String(),
		Name:        name,
		Email:       u.Email,
		Avatar:      u.ProfilePicture,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
		Role:        role,
	}
}

// ResolveMediaURL turns a storage reference into a URL. Absolute and
// root-relative references are returned untouched; anything else is served
// from <base>/storage/. An empty reference yields fallback.
func ResolveMediaURL(base, ref, fallback string) string {
	switch {
	case ref == "":
		return fallback
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "/"):
		return ref
	default:
		return strings.TrimRight(base, "/") + "/storage/" + ref
	}
}
