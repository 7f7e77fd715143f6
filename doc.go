// Package accounts is the credential and account-lifecycle authority for a
// user directory: it creates accounts, authenticates credentials, issues and
// verifies bearer tokens, and drives account-state transitions against a
// downstream record store.
//
// Lifecycle operations:
//   - Each operation ships as a message plus handler pair (RegisterUserMessage,
//     LoginUserMessage, ...) so an RPC gateway can decode a payload, execute
//     one handler, and return the result or the translated error. Handlers
//     keep every mutation to a single repository write.
//
// Tokens:
//   - TokenService signs two flavors over one HS256 signer: session tokens
//     carrying the sanitized user, and purpose tokens limited to one named
//     operation (confirm-account, reset-password). Verification failures
//     collapse into a single invalid-token outcome; the specific cause only
//     reaches the logs.
//
// Reset invalidation:
//   - Outstanding reset tokens are never tracked or revoked. Every credential
//     change bumps password_changed_at, and ResetPassword rejects any token
//     issued at or before that instant. One timestamp comparison replaces a
//     revocation store.
package accounts
