// Package server exposes the session cache over HTTP.
//
// Routes:
//
//	POST   /sessions       create a session with a generated ID
//	GET    /sessions/{id}  read a session
//	PUT    /sessions/{id}  create or replace a session
//	DELETE /sessions/{id}  remove a session from memory and every backend
//	GET    /health/live    liveness check
//	GET    /health/ready   readiness check
//	GET    /metrics        Prometheus metrics
//
// Errors are rendered as {"error": "..."} with the matching status code.
package server
