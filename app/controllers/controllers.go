// Package controllers adapts HTTP requests to the services. Successful
// responses are the bare resource; failures go through ctx.Fail.
package controllers

// success is the body of write endpoints that return no resource.
var success = map[string]bool{"success": true}
