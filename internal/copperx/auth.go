package copperx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// RequestEmailOTP asks the API to email a one-time code to email.
func (c *Client) RequestEmailOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/email-otp/request", "", nil, body, nil)
}

// VerifyEmailOTP exchanges email and code for tokens. The organization is the user's first one.
func (c *Client) VerifyEmailOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	body := map[string]string{"email": email, "code": strings.TrimSpace(code)}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/email-otp/authenticate", "", nil, body, &resp); err != nil {
		return nil, err
	}
	token := resp.Token
	if token == "" {
		token = resp.LegacyToken
	}
	if token == "" {
		return nil, errors.New("copperx: authenticate response has no token")
	}
	orgID := resp.User.OrganizationID
	if orgID == "" && len(resp.User.Organizations) > 0 {
		orgID = resp.User.Organizations[0].ID
	}
	userEmail := resp.User.Email
	if userEmail == "" {
		userEmail = email
	}
	return &AuthResult{
		UserID:         resp.User.ID,
		Token:          token,
		RefreshToken:   resp.RefreshToken,
		OrganizationID: orgID,
		Email:          userEmail,
	}, nil
}

// GetProfile returns the caller's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetKYCStatus returns the caller's first KYC record, or ErrNotFound when there is none.
func (c *Client) GetKYCStatus(ctx context.Context, token string) (*KYCStatus, error) {
	raw, err := c.getList(ctx, "/api/kycs", token, nil)
	if err != nil {
		return nil, err
	}
	list, err := decodeList[KYCStatus](raw)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}
