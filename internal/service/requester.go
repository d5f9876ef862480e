package service

// Requester identifies who is making a request. The zero value is an
// anonymous visitor.
type Requester struct {
	UserID   string
	Username string
}

// Anonymous is the requester for visitors without a session.
var Anonymous = Requester{}

// Authenticated reports whether the requester is signed in.
func (r Requester) Authenticated() bool {
	return r.UserID != ""
}
