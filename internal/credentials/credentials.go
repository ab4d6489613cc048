// Package credentials looks up stored third-party account links for users.
package credentials

import "context"

// DomainRunKeeper is the domain key under which RunKeeper credentials are stored.
const DomainRunKeeper = "run_keeper"

const bearerKeyPrefix = "bearer_"

// BearerKey returns the credential key holding the owner's bearer token.
// A missing key means the owner never linked their vendor account.
func BearerKey(owner string) string {
	return bearerKeyPrefix + owner
}

// Source returns all stored credentials for a domain as a key/value map.
type Source interface {
	Credentials(ctx context.Context, domain string) (map[string]string, error)
}
