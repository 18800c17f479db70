package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
)

// HotspotsHandler clusters the samples recorded in a city on a day.
// The legacy radius parameter is accepted and ignored.
func HotspotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := usecases.HotspotQuery{
			City:  strings.TrimSpace(c.Query("city")),
			State: strings.TrimSpace(c.Query("state")),
			Date:  c.Query("date"),
			Tier:  c.Query("tier"),
		}
		if q.City == "" || q.State == "" || q.Date == "" {
			return errBadRequest(c, "city, state and date are required")
		}

		clusters, err := deps.Hotspots.GetHotspots(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(clusters)
	}
}

// DistanceHandler returns the distance a driver travelled on a day.
// date defaults to today (UTC).
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		driverID := c.Query("driverId")
		if driverID == "" {
			return errBadRequest(c, "driverId is required")
		}
		date := c.Query("date", time.Now().UTC().Format(usecases.DateLayout))

		report, err := deps.Distances.DistanceTravelled(c.UserContext(), driverID, date)
		if err != nil {
			return errFromService(c, err)
		}
		if report.Samples < 2 {
			return c.JSON(fiber.Map{"distance": 0})
		}
		return c.JSON(fiber.Map{
			"totalDistance": report.TotalDistance,
			"unit":          report.Unit,
		})
	}
}

type randomPointsRequest struct {
	City     string `json:"city" query:"city"`
	State    string `json:"state" query:"state"`
	Date     string `json:"date" query:"date"`
	DriverID string `json:"driverId" query:"driverId"`
}

// RandomPointsHandler generates and stores ten synthetic samples for a
// driver inside a city. GET reads the query string, POST a JSON body.
func RandomPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req randomPointsRequest
		status := fiber.StatusOK
		if c.Method() == fiber.MethodPost {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
			status = fiber.StatusCreated
		} else if err := c.QueryParser(&req); err != nil {
			return errBadRequest(c, "invalid query parameters")
		}
		if req.City == "" || req.State == "" || req.Date == "" || req.DriverID == "" {
			return errBadRequest(c, "city, state, date and driverId are required")
		}

		samples, err := deps.Locations.SeedRandom(c.UserContext(), req.City, req.State, req.Date, req.DriverID)
		if err != nil {
			return errFromService(c, err)
		}
		return c.Status(status).JSON(samples)
	}
}

type createDriverRequest struct {
	Name string `json:"name"`
}

// CreateDriverHandler registers a new driver.
func CreateDriverHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDriverRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" {
			return errBadRequest(c, "name is required")
		}

		driver, err := deps.Drivers.Create(c.UserContext(), req.Name)
		if err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(driver)
	}
}

// ListDriversHandler returns a page of drivers.
func ListDriversHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		drivers, total, err := deps.Drivers.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromService(c, err)
		}
		if drivers == nil {
			drivers = []domain.Driver{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: drivers, Pagination: pg})
	}
}

type addLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	DriverID  string   `json:"driverId"`
}

// AddLocationHandler records the current position of a driver.
func AddLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Latitude == nil || req.Longitude == nil || req.DriverID == "" {
			return errBadRequest(c, "latitude, longitude and driverId are required")
		}

		p := domain.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		sample, err := deps.Locations.AddLocation(c.UserContext(), req.DriverID, p)
		if errors.Is(err, domain.ErrNotFound) {
			return errBadRequest(c, "invalid driverId")
		}
		if err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sample)
	}
}

// LastLocationHandler returns the most recent position seen for a driver.
func LastLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "driver id is required")
		}
		if deps.Tracker == nil {
			return errInternal(c, "tracker not available")
		}

		sample, err := deps.Tracker.LastPosition(c.UserContext(), id)
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound(c, "no position recorded for driver")
		}
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(sample)
	}
}
