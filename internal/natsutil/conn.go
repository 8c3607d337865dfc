package natsutil

import (
	"fmt"
	"time"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go"
)

// Connect dials a NATS server for plan distribution.
//
// Disconnects and reconnects are logged at Warn and Info. A connect failure is
// returned wrapped with types.ErrConnectivity.
//
// Parameters:
//   - url: NATS server URL(s), comma separated
//   - name: Client connection name shown in server monitoring
//   - timeout: Dial timeout (0 = nats default)
//   - logger: Logger for connection events
//
// Returns:
//   - *nats.Conn: Connected client; the caller closes it
//   - error: Wrapped connectivity error on failure
func Connect(url, name string, timeout time.Duration, logger types.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(3),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %w", types.ErrConnectivity, url, err)
	}

	return nc, nil
}
