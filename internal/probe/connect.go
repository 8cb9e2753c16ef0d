package probe

import (
	"GraphSpectra/internal/pkg/retry"
	"context"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// connect dials NATS, retrying while the server is unreachable.
func connect(ctx context.Context, url string, policy retry.Policy) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(ctx, policy, func(attempt int) error {
		var err error
		nc, err = nats.Connect(url, nats.Name("graphspectra"))
		if err != nil {
			log.Printf("Warning: NATS connect attempt %d to %s failed: %v", attempt, url, err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Printf("Connected to NATS server at %s", url)
	return nc, nil
}
