package testutil

import (
	"strconv"

	"github.com/c360/brokerboot/config"
)

// BrokerProperties returns the host and port keys for a broker under test.
// Extra key/value pairs are applied on top.
func BrokerProperties(host string, port int, extra ...string) config.Properties {
	props := config.Properties{
		config.KeyHost: host,
		config.KeyPort: strconv.Itoa(port),
	}
	for i := 0; i+1 < len(extra); i += 2 {
		props[extra[i]] = extra[i+1]
	}
	return props
}
