// Package health serves liveness and readiness checks for the session cache
// service.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers 503
// when any of them fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	    "cache":    cache.Healthcheck(),
//	}, health.WithLogger(log)))
//
// Probes get plain text ("OK" / "Service Unavailable"). Clients sending
// Accept: application/json, or ?format=json, get the per-check report:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "postgres": {"status": "healthy"},
//	    "redis": {"status": "unhealthy", "error": "connection refused"}
//	  }
//	}
package health
