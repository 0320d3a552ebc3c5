// Package platformsdk is an HTTP client for the marketplace platform that
// hosts the shop. It covers the endpoints the storefront needs: the OAuth
// authorization redirect and code exchange, bearer-token verification,
// password login, catalog reads, and balance-based payment submission.
//
// The storefront never sees platform passwords except on the direct login
// path; identity otherwise flows through the redirect handshake and the
// opaque bearer token the platform issues.
package platformsdk
