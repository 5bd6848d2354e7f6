package googleauth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type UserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func NewOAuthClient(clientID, clientSecret, redirectURI string) *OAuthClient {
	return &OAuthClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
	}
}

func (c *OAuthClient) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode()
}

// GetUserInfoByCode exchanges an authorization code for an access token,
// then fetches the user's OpenID profile.
func (c *OAuthClient) GetUserInfoByCode(code string) (*UserInfo, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"redirect_uri":  {c.RedirectURI},
		"grant_type":    {"authorization_code"},
	}
	resp, err := http.Post(
		"https://oauth2.googleapis.com/token",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	var tokenResult struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(respBytes, &tokenResult); err != nil {
		return nil, fmt.Errorf("decode token resp: %w (body: %s)", err, string(respBytes))
	}
	if tokenResult.Error != "" {
		return nil, fmt.Errorf("exchange code failed: %s: %s", tokenResult.Error, tokenResult.ErrorDescription)
	}
	if tokenResult.AccessToken == "" {
		return nil, fmt.Errorf("empty access_token (body: %s)", string(respBytes))
	}

	return c.getUserInfo(tokenResult.AccessToken)
}

func (c *OAuthClient) getUserInfo(accessToken string) (*UserInfo, error) {
	req, _ := http.NewRequest("GET", "https://openidconnect.googleapis.com/v1/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request user info: %w", err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get user info failed (status=%d): %s", resp.StatusCode, string(respBytes))
	}

	var userInfo UserInfo
	if err := json.Unmarshal(respBytes, &userInfo); err != nil {
		return nil, fmt.Errorf("parse user info: %w (body: %s)", err, string(respBytes))
	}
	if userInfo.Sub == "" {
		return nil, fmt.Errorf("user info missing subject (body: %s)", string(respBytes))
	}
	return &userInfo, nil
}
