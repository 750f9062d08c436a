// Package jwt verifies the operator bearer tokens that guard the admin
// endpoints.
//
// Tokens are minted by the identity provider in front of this service; the
// HS512 implementation here can also sign them, which tests and local tooling
// rely on.
package jwt
