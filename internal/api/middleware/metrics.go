package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware считает запросы и длительность по шаблону маршрута
// (/api/v1/bookings/{bookingId}, а не конкретный путь)
func MetricsMiddleware(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			observer.ObserveHTTP(r.Method, routeTemplate(r), rw.status, time.Since(start))
		})
	}
}

// Logging пишет в лог метод, маршрут, код ответа и длительность
func Logging(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Error("%s %s %d %s", r.Method, r.URL.Path, rw.status, elapsed)
			case rw.status >= http.StatusBadRequest:
				logger.Warn("%s %s %d %s", r.Method, r.URL.Path, rw.status, elapsed)
			default:
				logger.Info("%s %s %d %s", r.Method, r.URL.Path, rw.status, elapsed)
			}
		})
	}
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tmpl
}
