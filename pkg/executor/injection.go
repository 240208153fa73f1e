package executor

import (
	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"
)

// warnOnInjectionPatterns scans bound string parameters for SQL injection
// signatures. Values travel on the parameter channel and cannot change the
// statement, so a finding is logged for audit rather than failing the call.
// Only strings are scanned; other variants cannot carry injection patterns.
func (c *Client) warnOnInjectionPatterns(args []any) {
	for i, arg := range args {
		s, ok := arg.(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(s); isSQLi {
			c.logger.Warn("SQL injection pattern in bound parameter",
				zap.Int("position", i+1),
				zap.String("fingerprint", string(fingerprint)))
		}
	}
}
