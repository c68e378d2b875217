package user

import "strings"

// UpdateProfileDTO carries the self-service profile fields. Email and role
// changes are deliberately not possible here.
type UpdateProfileDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d UpdateProfileDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}
