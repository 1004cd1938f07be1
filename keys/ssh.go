// Package keys manages the SSH host key of the chat front door
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// LoadOrGenerateHostKey loads the host key at path, or generates and saves
// a new one if the file does not exist
func LoadOrGenerateHostKey(path string) (ssh.Signer, error) {
	if _, err := os.Stat(path); err == nil {
		return loadExistingKey(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat host key file: %w", err)
	}
	return generateNewKey(path)
}

// loadExistingKey parses a PEM private key. Both OpenSSH and the older
// PKCS#1 RSA encodings are accepted.
func loadExistingKey(path string) (ssh.Signer, error) {
	log.Info().Str("path", path).Msg("loading existing host key")
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read host key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host key: %w", err)
	}
	return signer, nil
}

// generateNewKey creates an ed25519 host key and saves it to path
func generateNewKey(path string) (ssh.Signer, error) {
	log.Info().Str("path", path).Msg("generating new host key")
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate host key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(privateKey, "assistant-chat host key")
	if err != nil {
		return nil, fmt.Errorf("failed to encode host key: %w", err)
	}
	if err := saveKeyToFile(block, path); err != nil {
		return nil, err
	}

	signer, err := ssh.NewSignerFromKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer from key: %w", err)
	}
	return signer, nil
}

// saveKeyToFile writes block to path, readable only by the owner
func saveKeyToFile(block *pem.Block, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	keyFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create host key file: %w", err)
	}
	defer keyFile.Close()

	if err := pem.Encode(keyFile, block); err != nil {
		return fmt.Errorf("failed to write host key to file: %w", err)
	}
	return nil
}
