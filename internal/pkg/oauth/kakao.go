package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// x/oauth2 ships no kakao package, so the endpoint is spelled out here.
var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

type KakaoUser struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

type KakaoOAuth struct {
	config *oauth2.Config
}

func NewKakaoOAuth(clientID, clientSecret, redirectURI string) *KakaoOAuth {
	return &KakaoOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     kakaoEndpoint,
		},
	}
}

func (k *KakaoOAuth) GetAuthURL(state string) string {
	return k.config.AuthCodeURL(state)
}

func (k *KakaoOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return k.config.Exchange(ctx, code)
}

// GetUser fetches the authenticated Kakao user's profile.
func (k *KakaoOAuth) GetUser(ctx context.Context, token *oauth2.Token) (*KakaoUser, error) {
	client := k.config.Client(ctx, token)

	resp, err := client.Get("https://kapi.kakao.com/v2/user/me")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kakao api error: %s", string(body))
	}

	var user KakaoUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &user, nil
}
