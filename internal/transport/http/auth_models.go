package http

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	Name            string `json:"name" form:"name" example:"Ada Lovelace"`
	Email           string `json:"email" form:"email" example:"ada@example.com"`
	Password        string `json:"password" form:"password" example:"pass1234"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm" example:"pass1234"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" form:"email" example:"ada@example.com"`
	Password string `json:"password" form:"password" example:"pass1234"`
}

// ForgotPasswordRequest asks for a reset link to be mailed.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" example:"ada@example.com"`
}

// ResetPasswordRequest sets a new password with the token from the reset link.
type ResetPasswordRequest struct {
	Password        string `json:"password" example:"brandnew99"`
	PasswordConfirm string `json:"passwordConfirm" example:"brandnew99"`
}

// UpdatePasswordRequest changes the password of the logged in user.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" example:"pass1234"`
	Password        string `json:"password" example:"brandnew99"`
	PasswordConfirm string `json:"passwordConfirm" example:"brandnew99"`
}

// UpdateMeRequest is the profile update. Password fields are only read to be rejected.
type UpdateMeRequest struct {
	Name            *string `json:"name" form:"name"`
	Email           *string `json:"email" form:"email"`
	Password        *string `json:"password" form:"password"`
	PasswordConfirm *string `json:"passwordConfirm" form:"passwordConfirm"`
}

// AdminUserRequest is the admin update of another account.
type AdminUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role" example:"guide"`
	Password *string `json:"password"`
}

type CreateReviewRequest struct {
	Review string `json:"review" example:"Amazing views, great guide."`
	Rating int    `json:"rating" example:"5"`
	Tour   string `json:"tour" example:"0b1e5c3a-6f2d-4c1a-9a55-2f3a9b7e8d10"`
}

type UpdateReviewRequest struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating"`
}
