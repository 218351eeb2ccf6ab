package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FirstName    string    `json:"first_name" dynamodbav:"first_name"`
	LastName     string    `json:"last_name" dynamodbav:"last_name"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	Birthday     time.Time `json:"birthday" dynamodbav:"birthday"`
	Gender       string    `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Address      string    `json:"address" dynamodbav:"address"`
	Latitude     *float64  `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
	IDType       string    `json:"id_type,omitempty" dynamodbav:"id_type,omitempty"`
	IDNumber     string    `json:"-" dynamodbav:"id_number,omitempty"`
	ValidIDURL   *string   `json:"valid_id_url" dynamodbav:"valid_id_url"`
	ProfilePic   *string   `json:"profile_pic" dynamodbav:"profile_pic"`
	IsVerified   bool      `json:"is_verified" dynamodbav:"is_verified"`
	Verified     bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// CompleteRegistrationRequest is the body of POST /registration/complete.
// Field names follow the web client's camelCase payload.
type CompleteRegistrationRequest struct {
	VerificationToken string   `json:"verificationToken"`
	Email             string   `json:"email" validate:"required,email"`
	Password          string   `json:"password" validate:"required,password"`
	FirstName         string   `json:"firstName" validate:"required"`
	LastName          string   `json:"lastName" validate:"required"`
	PhoneNumber       string   `json:"phoneNumber" validate:"required,len=10,numeric"`
	Birthday          string   `json:"birthday" validate:"required,datetime=2006-01-02"`
	Gender            string   `json:"gender"`
	Address           string   `json:"address"`
	Latitude          *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude         *float64 `json:"longitude" validate:"omitempty,longitude"`
	IDType            string   `json:"idType"`
	IDNumber          string   `json:"idNumber"`
	IDImageURL        string   `json:"idImageUrl" validate:"omitempty,url"`
	IDImageBase64     string   `json:"idImage"`
	ProfilePicURL     string   `json:"profilePicUrl" validate:"omitempty,url"`
	ProfilePicBase64  string   `json:"profilePic"`
	FaceCaptureBase64 string   `json:"faceCapture"`
}
