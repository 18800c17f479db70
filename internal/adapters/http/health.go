package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readyTimeout = 3 * time.Second

// HealthHandler reports liveness and process uptime.
func HealthHandler() fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": "dev",
		})
	}
}

type readinessCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) error // nil when the dependency is not configured
}

var errNATSDisconnected = errors.New("disconnected")

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{
		{name: "storage", required: true},
		{name: "nats"},
		{name: "cache"},
	}
	if deps.Storage != nil {
		checks[0].probe = deps.Storage.Ping
	}
	if nc := deps.NATS; nc != nil {
		checks[1].probe = func(context.Context) error {
			if !nc.IsConnected() {
				return errNATSDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[2].probe = deps.Cache.Ping
	}
	return checks
}

// ReadyHandler probes storage, NATS and the cache. Storage is required. NATS
// and the cache may be absent but fail readiness when configured and
// unreachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range readinessChecks(deps) {
			if chk.probe == nil {
				results[chk.name] = "not configured"
				if chk.required {
					ready = false
				}
				continue
			}
			if err := chk.probe(ctx); err != nil {
				results[chk.name] = "error: " + err.Error()
				ready = false
				continue
			}
			results[chk.name] = "ok"
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": results,
			})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
