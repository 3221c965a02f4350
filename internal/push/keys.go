package push

import (
	"fmt"

	"github.com/JPedro1988/app-kidquest/internal/state"
)

const (
	credVAPIDPublic  = "vapid_public"
	credVAPIDPrivate = "vapid_private"
)

// EnsureVAPIDKeys resolves the VAPID key pair the server should use.
// Explicitly configured keys win. Otherwise a pair generated on an
// earlier run is loaded from the credential file under dir; on first run
// a fresh pair is generated and persisted there. Rotating the pair would
// invalidate every existing browser subscription, so a generated pair
// must survive restarts.
func EnsureVAPIDKeys(dir, publicKey, privateKey string) (string, string, error) {
	if publicKey != "" && privateKey != "" {
		return publicKey, privateKey, nil
	}
	if dir == "" {
		// Nowhere to persist a generated pair; leave push disabled
		// rather than mint keys that rotate on every boot.
		return "", "", nil
	}

	creds, err := state.LoadCredentials(dir)
	if err != nil {
		return "", "", fmt.Errorf("load stored keys: %w", err)
	}
	if pub, priv := creds[credVAPIDPublic], creds[credVAPIDPrivate]; pub != "" && priv != "" {
		return pub, priv, nil
	}

	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		return "", "", err
	}
	creds[credVAPIDPublic] = pub
	creds[credVAPIDPrivate] = priv
	if err := state.SaveCredentials(dir, creds); err != nil {
		return "", "", fmt.Errorf("store generated keys: %w", err)
	}
	return pub, priv, nil
}
