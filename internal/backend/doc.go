// Package backend is a client for the console's backend JSON API.
//
// Every call is a plain JSON read (or a small POST) under a common prefix,
// "/test/api" by default:
//
//	c := backend.New(
//	    backend.WithBaseURL("http://localhost:8080"),
//	    backend.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	)
//	endpoints, err := c.Catalog(ctx)
//
// Transport failures and non-2xx responses come back as *types.FetchError
// wrapping either the transport error or an *APIError.
package backend
