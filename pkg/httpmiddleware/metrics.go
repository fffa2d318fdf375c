package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics returns a middleware recording request count and duration with the
// given meter provider. Requests are attributed by method and status code;
// the path is deliberately left out to keep cardinality bounded.
func Metrics(provider metric.MeterProvider) (Middleware, error) {
	meter := provider.Meter("boutique-api/httpmiddleware")

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests processed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create request counter")
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.Int("http.response.status_code", sw.Status()),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000.0, attrs)
		})
	}, nil
}
