// Package services holds the request-independent logic behind the HTTP
// handlers: serving a license from the lookaside store or the issuer, and
// admitting licenses pushed by the minter.
package services
