// Package license models the opaque license documents served by the API.
//
// A license is a signed JSON document produced by an LCP server. This
// package never inspects it beyond the top-level "id" field, which doubles
// as the storage key. It also defines the key payload embedded in every
// request to the issuer.
package license
