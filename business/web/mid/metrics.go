package mid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ardanlabs/gossipchain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
)

// requests counts the requests served by method and status code.
var requests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Help:      "Number of HTTP requests served",
		Name:      "http_requests_total",
		Namespace: "gossipchain",
	},
	[]string{"method", "code"},
)

func init() {
	prometheus.MustRegister(requests)
}

// Metrics counts every request once the rest of the chain has responded.
// It goes outside Errors so failed requests are counted with the status
// they were answered with.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			code := http.StatusInternalServerError
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				code = v.StatusCode
			}
			requests.WithLabelValues(r.Method, strconv.Itoa(code)).Inc()

			return err
		}

		return h
	}

	return m
}
