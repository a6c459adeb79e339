package walkroute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKTLinestring returns WKT representation of LineString. Empty string for degenerate lines
func PrepareWKTLinestring(line orb.LineString) string {
	if len(line) < 2 {
		return ""
	}
	return wkt.MarshalString(line)
}
