// Package session keeps an authenticated connection to a Search Management
// Map (SMM) server.
//
// A Session owns a host, a pair of credentials and one transport. Every
// request goes through Fetch, which runs up to MaxAttempts physical
// requests to resolve what the server asks for along the way:
//
//   - a redirect from http:// to https:// rewrites the session host and retries
//   - a redirect to /accounts/login/ logs in again and retries
//   - any other redirect is returned to the caller untouched
//
// Logging in scrapes the csrfmiddlewaretoken from the login form and posts
// it back together with the credentials. Success is recognized only by the
// 302 the server sends after a valid login.
//
// A Session is safe for concurrent use. Calls are serialized: the lock is
// held for the whole of a Fetch, including any nested login.
//
// Basic usage:
//
//	sess := session.Connect("https://smm.example.com", "drone7", "secret",
//		session.WithLogger(log))
//	defer sess.Close()
//
//	if sess.State() != session.StateConnected {
//		return fmt.Errorf("login: %s", sess.State())
//	}
//
//	var buf bytes.Buffer
//	res, err := sess.Get("/assets/mine/json/", &buf)
package session
