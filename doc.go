// Package auth provides the authentication and authorization core of the
// todo API: password hashing, JWT issuance, credential validation, the
// request guard and the role/ownership policy, plus the users repository
// and HTTP controllers built on them.
//
// Request flow:
//   - Guard.Middleware extracts the bearer token, verifies it with the
//     TokenService and reloads the user on every request, so admin changes
//     and deletions apply to tokens already issued.
//   - Services call Authorize (or Decide) explicitly before reading or
//     mutating a resource. The guard never authorizes on its own.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther, the
//     guard and UserService to describe sign in, registration, denial and
//     admin events. Sinks run best-effort (errors are logged).
package auth
