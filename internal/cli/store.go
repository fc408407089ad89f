package cli

import (
	"fmt"

	"github.com/aretw0/trestle/pkg/adapters/file"
	"github.com/aretw0/trestle/pkg/adapters/memory"
	"github.com/aretw0/trestle/pkg/adapters/redis"
	"github.com/aretw0/trestle/pkg/ports"
)

// OpenStore creates the configured profile store. The returned close function is never nil.
func OpenStore(s StoreSettings) (ports.ConfigStore, func() error, error) {
	noop := func() error { return nil }

	switch s.Backend {
	case "", "file":
		return file.New(s.Path), noop, nil
	case "memory":
		return memory.NewStore(), noop, nil
	case "redis":
		var opts []redis.Option
		if s.Prefix != "" {
			opts = append(opts, redis.WithPrefix(s.Prefix))
		}
		if s.TTL > 0 {
			opts = append(opts, redis.WithTTL(s.TTL))
		}
		store := redis.New(s.RedisAddr, opts...)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q (want memory, file or redis)", s.Backend)
	}
}
