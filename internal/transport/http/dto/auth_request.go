package dto

import "strings"

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Wilaya   string `json:"wilaya" validate:"required"`
}

func (r *SignupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Wilaya = strings.TrimSpace(r.Wilaya)
	return Validate(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return Validate(r)
}

// -------- Password reset --------

// Step 1: request a code by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return Validate(r)
}

// Step 2: prove possession of the code.
type VerifyResetCodeRequest struct {
	ResetCode string `json:"resetCode" validate:"required"`
}

func (r *VerifyResetCodeRequest) Validate() error {
	r.ResetCode = strings.TrimSpace(r.ResetCode)
	return Validate(r)
}

// Step 3: set the new password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return Validate(r)
}
