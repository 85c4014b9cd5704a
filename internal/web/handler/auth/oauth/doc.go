// Package oauth implements the web login flow against the configured OAuth2
// identity providers.
//
// A login starts at /login/oauth/:provider, which sends the browser to the
// provider's authorization endpoint with a one-time state token. The provider
// redirects back to /oauth-authorized/:provider, where the authorization code
// is exchanged for an access token, the canonical user record is resolved
// through the provider's REST API, and a local session is established.
//
// Requests carrying a pre-issued access token in the Custom-Api-Token header
// skip the authorization-code exchange and use the header value directly.
//
// A failed or declined authorization never errors; the browser is redirected
// without a login. The post-login target is resolved in order: a safe `next`
// query parameter, the provider's configured custom redirect URL, the
// dashboard.
package oauth
