// Package secrets implements daggen.ImagePullSecretResolver against
// HashiCorp Vault's KV engine, for pipelines whose config names a Vault
// path instead of a literal Kubernetes Secret name.
package secrets

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cloudfoundry-community/vaultkv"
)

// VaultResolver resolves a Vault KV path to the Kubernetes Secret name
// stored under its "name" key. It makes exactly one blocking call per
// Resolve — no caching, no connection pool, matching the synchronous,
// single-call shape the rest of the compiler keeps.
type VaultResolver struct {
	kv *vaultkv.KV
}

// NewVaultResolver builds a VaultResolver against addr, authenticating
// with token. skipVerify disables TLS certificate verification, for
// Vault instances behind a self-signed proxy in development.
func NewVaultResolver(addr, token string, skipVerify bool) (*VaultResolver, error) {
	parsed, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing vault address %q: %w", addr, err)
	}

	client := &vaultkv.Client{
		AuthToken: token,
		VaultURL:  parsed,
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: skipVerify},
			},
		},
	}

	return &VaultResolver{kv: client.NewKV()}, nil
}

// Resolve implements daggen.ImagePullSecretResolver.
func (r *VaultResolver) Resolve(ref string) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	_, err := r.kv.Get(ref, &out, nil)
	if err != nil {
		return "", fmt.Errorf("resolving image pull secret %q: %w", ref, err)
	}
	if out.Name == "" {
		return "", fmt.Errorf("vault path %q has no 'name' key", ref)
	}
	return out.Name, nil
}
