// userapi/service.go
/* Package userapi binds the user-account routes of the backend to typed Go calls on top
of httpclient. Every call returns the backend's Result envelope or the dispatcher's
classified failure. Login stores the session token in the client's TokenStore and
Logout clears it. */
package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/deploymenttheory/go-api-user-client/httpclient"
	"go.uber.org/zap"
)

const (
	routeRegister      = "/user/register"
	routeLogin         = "/user/login"
	routeCaptcha       = "/user/captcha"
	routeUserInfo      = "/user/info"
	routeUserInfoByID  = "/user/info/{id}"
	routeAvatar        = "/user/avatar"
	routePassword      = "/user/password"
	routeDashboard     = "/item/user/dashboard"
	routeLogout        = "/user/logout"
	avatarFormField    = "file"
	userInfoByIDFormat = "/user/info/%s"
)

// ErrMissingToken is returned when a successful login carries no token.
var ErrMissingToken = errors.New("login response carried no token")

// Service exposes one method per backend route.
type Service struct {
	client      *httpclient.Client
	successCode int
}

// Option configures a Service.
type Option func(*Service)

// WithSuccessCode overrides the Result code treated as success.
func WithSuccessCode(code int) Option {
	return func(s *Service) {
		s.successCode = code
	}
}

// NewService returns a Service dispatching through client.
func NewService(client *httpclient.Client, opts ...Option) *Service {
	s := &Service{client: client, successCode: DefaultSuccessCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, s, httpclient.Descriptor{
		Path:   routeRegister,
		Method: httpclient.MethodPost,
		Body:   httpclient.JSONBody{Value: req},
	})
}

// Login authenticates and stores the returned token in the client's TokenStore.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Result[LoginData], error) {
	result, err := call[LoginData](ctx, s, httpclient.Descriptor{
		Path:   routeLogin,
		Method: httpclient.MethodPost,
		Body:   httpclient.JSONBody{Value: req},
	})
	if err != nil {
		return result, err
	}
	if result.Data.Token == "" {
		return result, ErrMissingToken
	}
	if err := s.client.AuthTokenHandler.StoreToken(result.Data.Token); err != nil {
		return result, err
	}
	s.client.Logger.Info("User logged in", zap.String("Username", req.Username))
	return result, nil
}

// GetCaptcha fetches a captcha challenge. The backend may answer with JSON or with the image.
func (s *Service) GetCaptcha(ctx context.Context) (*Result[Captcha], error) {
	envelope, err := s.client.Send(ctx, httpclient.Descriptor{Path: routeCaptcha, Method: httpclient.MethodGet})
	if err != nil {
		return nil, err
	}

	if image, ok := envelope.Body().([]byte); ok {
		return &Result[Captcha]{
			Code: s.successCode,
			Data: Captcha{Raw: image, ContentType: envelope.ContentType()},
		}, nil
	}

	var result Result[Captcha]
	if err := envelope.Decode(&result); err != nil {
		return nil, err
	}
	return &result, s.check(routeCaptcha, result.Code, result.Msg)
}

// GetUserInfo returns the profile of the logged in user.
func (s *Service) GetUserInfo(ctx context.Context) (*Result[UserInfo], error) {
	return call[UserInfo](ctx, s, httpclient.Descriptor{Path: routeUserInfo, Method: httpclient.MethodGet})
}

// GetUserInfoByID returns the public profile of another user.
func (s *Service) GetUserInfoByID(ctx context.Context, id string) (*Result[UserInfo], error) {
	return call[UserInfo](ctx, s, httpclient.Descriptor{
		Path:   httpclient.Path(userInfoByIDFormat, id),
		Route:  routeUserInfoByID,
		Method: httpclient.MethodGet,
	})
}

// UpdateUserInfo replaces the editable profile fields.
func (s *Service) UpdateUserInfo(ctx context.Context, req UpdateUserInfoRequest) (*Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, s, httpclient.Descriptor{
		Path:   routeUserInfo,
		Method: httpclient.MethodPut,
		Body:   httpclient.JSONBody{Value: req},
	})
}

// UpdateAvatar uploads a new avatar as the single "file" part of a multipart form.
// The backend answers with the new avatar URL.
func (s *Service) UpdateAvatar(ctx context.Context, fileName string, content io.Reader) (*Result[string], error) {
	if content == nil {
		return nil, fmt.Errorf("%w: avatar content is nil", httpclient.ErrInvalidDescriptor)
	}
	return call[string](ctx, s, httpclient.Descriptor{
		Path:   routeAvatar,
		Method: httpclient.MethodPost,
		Body: httpclient.MultipartBody{Parts: []httpclient.FormPart{
			httpclient.FileField(avatarFormField, fileName, content),
		}},
	})
}

// UpdatePassword changes the password. The backend reads both passwords from the query
// string; they are redacted from every log line and error message.
func (s *Service) UpdatePassword(ctx context.Context, oldPassword, newPassword string) (*Result[json.RawMessage], error) {
	return call[json.RawMessage](ctx, s, httpclient.Descriptor{
		Path:   routePassword,
		Method: httpclient.MethodPut,
		Query: httpclient.QueryParams{
			"oldPassword": oldPassword,
			"newPassword": newPassword,
		},
	})
}

// GetUserDashboard returns the dashboard summary of the logged in user.
func (s *Service) GetUserDashboard(ctx context.Context) (*Result[Dashboard], error) {
	return call[Dashboard](ctx, s, httpclient.Descriptor{Path: routeDashboard, Method: httpclient.MethodGet})
}

// Logout ends the session and clears the stored token once the backend confirms.
// A client without a TokenStore has nothing to clear.
func (s *Service) Logout(ctx context.Context) (*Result[json.RawMessage], error) {
	result, err := call[json.RawMessage](ctx, s, httpclient.Descriptor{Path: routeLogout, Method: httpclient.MethodPost})
	if err != nil {
		return result, err
	}
	if s.client.TokenStore() == nil {
		return result, nil
	}
	if err := s.client.AuthTokenHandler.ClearToken(); err != nil {
		return result, err
	}
	s.client.Logger.Info("User logged out")
	return result, nil
}

// call dispatches desc and decodes the Result envelope.
func call[T any](ctx context.Context, s *Service, desc httpclient.Descriptor) (*Result[T], error) {
	var result Result[T]
	if _, err := s.client.Do(ctx, desc, &result); err != nil {
		return nil, err
	}
	route := desc.Route
	if route == "" {
		route = desc.Path
	}
	return &result, s.check(route, result.Code, result.Msg)
}

func (s *Service) check(route string, code int, msg string) error {
	if code == s.successCode {
		return nil
	}
	return &ResultError{Route: route, Code: code, Msg: msg}
}
