package seal

import (
	"fmt"

	"vaultwars/internal/config"
	"vaultwars/internal/vw"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.SealConfig) (vw.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "none":
		return PlainSealer{}, nil
	default:
		return nil, fmt.Errorf("unknown seal type: %q", cfg.Type)
	}
}
