package dto

// UpdateProfileRequest does not include the username: display names are
// immutable once registered.
type UpdateProfileRequest struct {
	Bio *string `json:"bio"`
}

type UploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
