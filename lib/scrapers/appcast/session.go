package appcast

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"appcast-scraper/lib/cookieutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	loginPagePath    = "/user_sessions/new"
	loginSubmitPath  = "/user_sessions"
	tokenInputName   = "authenticity_token"
	csrfCookieName   = "csrf-token"
	htmlAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type Credentials struct {
	Email    string
	Password string
}

// AuthorizedContext is what a successful login leaves behind, it authorizes
// api requests.
type AuthorizedContext struct {
	CookieHeader string
	// empty when the portal did not set a csrf-token cookie
	CsrfToken string
}

type loginPage struct {
	token   string
	cookies []string
}

func (c *Client) fetchLoginPage(ctx context.Context) (loginPage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", htmlAcceptHeader).
		Get(loginPagePath)
	if err != nil {
		return loginPage{}, &LoginError{Step: StepLoginPage, Err: err}
	}
	if !res.IsSuccess() {
		return loginPage{}, &LoginError{Step: StepLoginPage, StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return loginPage{}, &LoginError{Step: StepToken, Err: err}
	}
	token := doc.Find(fmt.Sprintf("input[name=%s]", tokenInputName)).AttrOr("value", "")
	if token == "" {
		return loginPage{}, &LoginError{
			Step: StepToken,
			Err:  fmt.Errorf("no %s input on login page", tokenInputName),
		}
	}

	return loginPage{
		token:   token,
		cookies: append([]string(nil), res.Header().Values("Set-Cookie")...),
	}, nil
}

// a redirect is how the portal usually answers a successful login
func loginAccepted(status int) bool {
	return (status >= 200 && status < 300) || status == http.StatusFound
}

func (c *Client) submitLogin(ctx context.Context, page loginPage, creds Credentials) ([]string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			tokenInputName: page.token,
			"new_ui":       "true",
			"email":        creds.Email,
			"password":     creds.Password,
		})
	if cookie := cookieutil.BuildHeader(page.cookies); cookie != "" {
		req.SetHeader("cookie", cookie)
	}

	res, err := req.Post(loginSubmitPath)
	if err != nil {
		return nil, &LoginError{Step: StepLoginSubmit, Err: err}
	}
	if !loginAccepted(res.StatusCode()) {
		return nil, &LoginError{Step: StepLoginSubmit, StatusCode: res.StatusCode()}
	}

	merged := make([]string, 0, len(page.cookies))
	merged = append(merged, page.cookies...)
	merged = append(merged, res.Header().Values("Set-Cookie")...)
	return merged, nil
}

// AcquireSession logs into the portal with a login form submission and
// returns the cookies and csrf token needed to call the api.
func (c *Client) AcquireSession(ctx context.Context, creds Credentials) (AuthorizedContext, error) {
	ctx, span := tracer.Start(ctx, "client:AcquireSession")
	defer span.End()

	page, err := c.fetchLoginPage(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load login page")
		return AuthorizedContext{}, err
	}

	cookies, err := c.submitLogin(ctx, page, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login")
		return AuthorizedContext{}, err
	}

	csrf, ok := cookieutil.FindValue(cookies, csrfCookieName)
	span.SetAttributes(
		attribute.Int("cookies", len(cookies)),
		attribute.Bool("csrf_token", ok),
	)

	return AuthorizedContext{
		CookieHeader: cookieutil.BuildHeader(cookies),
		CsrfToken:    csrf,
	}, nil
}
