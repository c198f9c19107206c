// Package auth groups the authentication building blocks:
//
//   - auth/jwt       signs and verifies identity tokens
//   - auth/password  Argon2id credential hashing
//   - auth/authctx   request-scoped identity propagation
//
// Config composes the sub-configs so they load from one "auth" section:
//
//	auth:
//	  jwt:
//	    secret: "change-me"
//	    expires_in: "7d"
//	  password:
//	    argon2_time: 3
//	    argon2_memory: 65536
package auth
