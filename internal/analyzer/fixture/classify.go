package fixture

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// IsNetworkError reports whether err looks like a cross-origin or transport
// failure rather than a bad response, which the page uses to explain that
// the fixture server may not be running.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "CORS") || strings.Contains(msg, "NetworkError") {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
