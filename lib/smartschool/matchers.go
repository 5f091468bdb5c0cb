package smartschool

import (
	"dario.cat/mergo"
)

// LoginMatchers describes the login form of the platform and the indicators
// used to decide the outcome of a credential submission. Blank fields take
// the value of DefaultLoginMatchers, they exist so a layout change on the
// platform can be handled from configuration.
type LoginMatchers struct {
	LoginPath  string `json:"login_path"`
	LogoutPath string `json:"logout_path"`

	// TokenSelector selects the hidden anti-forgery input, its value attribute
	// is the token.
	TokenSelector string `json:"token_selector"`
	UsernameField string `json:"username_field"`
	PasswordField string `json:"password_field"`
	TokenField    string `json:"token_field"`

	// FailurePaths are the paths that mean the credentials were bounced back
	// to the login form, they are also the paths an expired session is
	// redirected to.
	FailurePaths []string `json:"failure_paths"`
	// FailureSelectors match an error fragment on the page, the text of the
	// first match becomes the error message.
	FailureSelectors []string `json:"failure_selectors"`
	// SuccessSelectors match something only present on a logged in page.
	SuccessSelectors []string `json:"success_selectors"`
	// SuccessCookies are cookies the platform issues (or rotates) when a user
	// logs in.
	SuccessCookies []string `json:"success_cookies"`
}

func DefaultLoginMatchers() LoginMatchers {
	return LoginMatchers{
		LoginPath:     "/login",
		LogoutPath:    "/logout",
		TokenSelector: `input[name="login_form[_token]"]`,
		UsernameField: "login_form[_username]",
		PasswordField: "login_form[_password]",
		TokenField:    "login_form[_token]",
		FailurePaths:  []string{"/login"},
		FailureSelectors: []string{
			".login-app__error",
			".smsc-login__error",
			"form[name=login_form] .error",
		},
		SuccessSelectors: []string{
			"#smscTopContainer",
			"nav.topnav",
			"[data-smsc-user]",
		},
		SuccessCookies: []string{"PHPSESSID"},
	}
}

func (m LoginMatchers) withDefaults() (LoginMatchers, error) {
	err := mergo.Merge(&m, DefaultLoginMatchers())
	return m, err
}
