package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/tokend/pkg/cryptox"
	"github.com/aussiebroadwan/tokend/pkg/jwtx"
)

// InitSigningKeys builds the signer/verifier pair for the configured
// algorithm.
//
// HS256 reads symmetric key material from TOKEND_HS256_KEY (or a key file)
// and refuses to start without it. EdDSA loads a PKCS8 PEM keypair from
// TOKEND_SIGNING_KEY_FILE; with no file configured a fresh keypair is
// generated at startup, which invalidates all outstanding tokens on restart.
func InitSigningKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, jwtx.Verifier, error) {
	switch cfg.Algorithm {
	case "HS256":
		if cfg.HS256Key == "" {
			return nil, nil, errors.New("HS256 requires TOKEND_HS256_KEY or TOKEND_HS256_KEY_FILE")
		}

		signer, err := jwtx.NewSignerHS256([]byte(cfg.HS256Key))
		if err != nil {
			return nil, nil, fmt.Errorf("init HS256 signer: %w", err)
		}

		logger.Info("signing keys initialized", "algorithm", "HS256")
		return signer, jwtx.NewVerifierHS256([]byte(cfg.HS256Key), cfg.Issuer, cfg.Audience), nil

	case "EdDSA", "":
		var pemKey []byte
		switch {
		case cfg.SigningKeyFile != "":
			data, err := os.ReadFile(cfg.SigningKeyFile)
			if err != nil {
				return nil, nil, fmt.Errorf("read signing key file: %w", err)
			}
			pemKey = data
			logger.Info("signing keys loaded from file",
				"algorithm", "EdDSA", "path", cfg.SigningKeyFile)

		default:
			data, err := cryptox.GenerateEd25519Key()
			if err != nil {
				return nil, nil, fmt.Errorf("generate signing key: %w", err)
			}
			pemKey = data
			logger.Warn("ephemeral signing keys generated - tokens will not survive restarts",
				"algorithm", "EdDSA")
		}

		signer, err := jwtx.NewSignerEdDSA(pemKey)
		if err != nil {
			return nil, nil, fmt.Errorf("init EdDSA signer: %w", err)
		}

		edSigner, ok := signer.(*jwtx.EdDSASigner)
		if !ok {
			return nil, nil, errors.New("unexpected EdDSA signer type")
		}

		return signer, jwtx.NewVerifierEdDSA(edSigner.PublicKey(), cfg.Issuer, cfg.Audience), nil

	default:
		return nil, nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
}
