package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/validation"
)

// LoginData holds data for the login page.
type LoginData struct {
	Username    string
	Next        string
	Error       string
	OIDCEnabled bool
}

// handleLoginPage renders the login page.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:  "Log in",
		Active: "login",
		Content: LoginData{
			Next:        r.URL.Query().Get("next"),
			OIDCEnabled: s.oidc != nil,
		},
	}

	// Check for flash message in query params
	if msg := r.URL.Query().Get("error"); msg != "" {
		data.Flash = &FlashMessage{Type: "error", Message: msg}
	}

	s.render(w, r, http.StatusOK, "login", data)
}

// handleLogin processes the login form.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	next := r.PostFormValue("next")

	user, err := s.accounts.Login(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		s.render(w, r, http.StatusOK, "login", PageData{
			Title:  "Log in",
			Active: "login",
			Content: LoginData{
				Username:    username,
				Next:        next,
				Error:       "Please enter a correct username and password. Note that both fields may be case-sensitive.",
				OIDCEnabled: s.oidc != nil,
			},
		})
		return
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.sessions.Create(w, user); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// handleLogout clears the session and renders the logged out page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	r = r.WithContext(withRequester(r.Context(), service.Anonymous))
	s.render(w, r, http.StatusOK, "logged_out", PageData{Title: "Logged out"})
}

// SignupData holds data for the signup page.
type SignupData struct {
	Form   validation.SignupForm
	Errors map[string][]string
}

// handleSignupPage renders the signup page.
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup", PageData{
		Title:   "Sign up",
		Active:  "signup",
		Content: SignupData{},
	})
}

// handleSignup creates an account and signs the new user in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	form := validation.SignupForm{
		Username:  r.PostFormValue("username"),
		FullName:  r.PostFormValue("full_name"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	user, verrs, err := s.accounts.Signup(r.Context(), form)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if verrs.HasErrors() {
		form.Password, form.Password2 = "", ""
		s.render(w, r, http.StatusOK, "signup", PageData{
			Title:   "Sign up",
			Active:  "signup",
			Content: SignupData{Form: form, Errors: verrs.ByField()},
		})
		return
	}

	log.Printf("New account %s", user.Username)
	if err := s.sessions.Create(w, user); err != nil {
		s.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
