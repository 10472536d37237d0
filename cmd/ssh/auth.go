package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"
)

type authorizedKey struct {
	key     gossh.PublicKey
	comment string
}

// loadAuthorizedKeys parses an OpenSSH authorized_keys file.
func loadAuthorizedKeys(path string) ([]authorizedKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var keys []authorizedKey
	for len(bytes.TrimSpace(raw)) > 0 {
		key, comment, _, rest, err := gossh.ParseAuthorizedKey(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		keys = append(keys, authorizedKey{key: key, comment: comment})
		raw = rest
	}
	return keys, nil
}

// matchKey returns the comment of the authorized key equal to key.
func matchKey(keys []authorizedKey, key ssh.PublicKey) (string, bool) {
	for _, ak := range keys {
		if ssh.KeysEqual(ak.key, key) {
			return ak.comment, true
		}
	}
	return "", false
}
