package server

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"skillmatch/internal/utils"
)

// displayServerInfo prints the endpoint table and the active limits
func (s *Server) displayServerInfo(w io.Writer) {
	fmt.Fprintln(w, "Available endpoints:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rt := range s.routes() {
		method, path, _ := strings.Cut(rt.pattern, " ")
		fmt.Fprintf(tw, "  %s\t%s\t- %s\n", method, strings.TrimSuffix(path, "{$}"), rt.summary)
	}
	_ = tw.Flush()

	if s.MaxRequestSize > 0 {
		fmt.Fprintf(w, "Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Fprintln(w, "Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min per client IP, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
	}
}
