package credential

import (
	"os"
	"strings"

	"pkt.systems/repostamp/schema"
)

// envBackend exposes one environment variable as the default slot.
type envBackend struct {
	variable string
}

func newEnvBackend(opts Options) (backend, error) {
	variable := strings.TrimSpace(opts.EnvVar)
	if variable == "" {
		variable = DefaultEnvVar
	}
	return &envBackend{variable: variable}, nil
}

func (b *envBackend) name() string { return BackendEnv }

func (b *envBackend) load() (map[schema.Slot]string, error) {
	tokens := make(map[schema.Slot]string)
	if value := strings.TrimSpace(os.Getenv(b.variable)); value != "" {
		tokens[schema.DefaultSlot] = value
	}
	return tokens, nil
}

func (b *envBackend) save(map[schema.Slot]string) error {
	return schema.ErrReadOnlyBackend
}
