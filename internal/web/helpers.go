package web

import (
	"net/url"
	"strings"
)

// safeNext returns next if it is a local absolute path, else "/".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// profilePath returns the profile URL of username.
func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// postPath returns the detail URL of a post.
func postPath(id string) string {
	return "/posts/" + url.PathEscape(id) + "/"
}
