// Package server provides HTTP routing, middleware, and the JSON API handlers for marquee.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Global middleware wraps the whole mux; route middleware such as the session and admin guards wraps one route.
//
// The [BasicRouter] implementation uses [http.ServeMux] with method-qualified patterns
// ("GET /movies/{id}") so path values are read with [http.Request.PathValue].
//
// # Middleware
//
// Every request passes through, outermost first:
//   - [Recover] turns handler panics into a 500 envelope
//   - [RequestID] tags the request and response with X-Request-ID
//   - [Logging] logs method, path, status and duration
//   - [CORS] answers preflights for the configured origins
//   - [RateLimiter] keeps a token bucket per client address
//   - [Timeout] bounds the request context, which flows into every query
//   - session authentication, attaching the caller named by a bearer token or session cookie
//
// # Responses
//
// Handlers return errors instead of writing them. The error is mapped to a status and code by
// [httputil.Status] and written as {"status":"error","error":{"code","message"}}. Successful responses
// are wrapped as {"status":"ok","data":...}.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// The Google sign-in handler is registered this way when client credentials are configured.
package server
