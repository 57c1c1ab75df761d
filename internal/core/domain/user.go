package domain

import "time"

// Field names shared by the update engine and the persistence layer.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldDescription     = "description"
	FieldPasswordHash    = "password_hash"
	FieldProfileImageURL = "profile_image_url"
)

// User models a portfolio owner. PasswordHash is a bcrypt hash and is never
// serialised.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PasswordChange is the outcome of a password change request. A wrong current
// password is an expected input, so it is reported here rather than as an error.
type PasswordChange struct {
	Changed bool `json:"changed"`
}

// ImageUpload is a fully buffered uploaded file.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProfileImage is returned after a successful upload.
type ProfileImage struct {
	URL string `json:"url"`
}
