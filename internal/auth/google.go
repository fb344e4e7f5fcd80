package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/users"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrEmailNotVerified = errors.New("email not verified")

type GoogleProviderParams struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	HttpClient   *http.Client
}

// GoogleProvider runs the authorization code flow against Google.
type GoogleProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

func NewGoogleProvider(params GoogleProviderParams) *GoogleProvider {
	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     params.ClientID,
			ClientSecret: params.ClientSecret,
			RedirectURL:  params.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				googleoauth.OpenIDScope,
				googleoauth.UserinfoEmailScope,
				googleoauth.UserinfoProfileScope,
			},
		},
		httpClient: httpClient,
	}
}

func (p *GoogleProvider) Name() string {
	return users.ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (_ *users.ExternalProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.google.exchange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(p.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("new userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &users.ExternalProfile{
		Provider:   users.ProviderGoogle,
		ProviderID: info.Id,
		Email:      info.Email,
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}
