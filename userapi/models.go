// userapi/models.go
package userapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultSuccessCode is the Result code the backend uses for success.
const DefaultSuccessCode = 200

// Result is the envelope every backend route answers with.
type Result[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// ResultError is returned when a request succeeded at the HTTP level but the backend
// reported a failure code in the Result envelope.
type ResultError struct {
	Route string
	Code  int
	Msg   string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: backend returned code %d: %s", e.Route, e.Code, e.Msg)
}

// RegisterRequest holds the registration fields.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	Captcha    string `json:"captcha,omitempty"`
	CaptchaKey string `json:"captchaKey,omitempty"`
}

// LoginRequest holds the login credentials.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Captcha    string `json:"captcha,omitempty"`
	CaptchaKey string `json:"captchaKey,omitempty"`
}

// LoginData is the payload of a successful login. The backend answers either with the
// bare token string or with an object carrying it.
type LoginData struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user,omitempty"`
}

// UnmarshalJSON accepts both a token string and an object.
func (d *LoginData) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &d.Token)
	}
	type plain LoginData
	return json.Unmarshal(trimmed, (*plain)(d))
}

// Captcha is a login or registration challenge. Image holds the encoded image when the
// backend answers with JSON, Raw holds the bytes when it answers with the image itself.
type Captcha struct {
	Key         string `json:"captchaKey"`
	Image       string `json:"captchaImage"`
	Raw         []byte `json:"-"`
	ContentType string `json:"-"`
}

// UserInfo is a user profile.
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createTime,omitempty"`
}

// UpdateUserInfoRequest holds the editable profile fields. Empty fields are omitted.
type UpdateUserInfoRequest struct {
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Dashboard is the user's dashboard summary. Its shape is owned by the backend.
type Dashboard map[string]any
