package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/avelko/weather-records/internal/export"
	"github.com/avelko/weather-records/internal/location"
	"github.com/avelko/weather-records/internal/store"
	"github.com/avelko/weather-records/internal/weather"
)

var validate = validator.New()

const defaultListLimit = 100

// Handler bundles the dependencies behind the HTTP surface.
type Handler struct {
	resolver     *location.Resolver
	service      *weather.Service
	store        *store.SQLiteStore
	maxListLimit int
}

// NewHandler creates a new Handler.
func NewHandler(resolver *location.Resolver, service *weather.Service, st *store.SQLiteStore, maxListLimit int) *Handler {
	if maxListLimit <= 0 {
		maxListLimit = defaultListLimit
	}
	return &Handler{
		resolver:     resolver,
		service:      service,
		store:        st,
		maxListLimit: maxListLimit,
	}
}

// Register wires the HTTP handlers into the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Post("/weather/search", h.search)
	api.Post("/records", h.createRecord)
	api.Get("/records", h.listRecords)
	api.Get("/records/:id", h.getRecord)
	api.Put("/records/:id", h.updateRecord)
	api.Delete("/records/:id", h.deleteRecord)
	api.Get("/records/:id/export", h.exportRecord)
}

// geoInput mirrors the search payload's location object. Lat+Lon take
// priority over Query when both are present.
type geoInput struct {
	Query string   `json:"query"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
}

type searchRequest struct {
	Location  geoInput `json:"location"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Save      bool     `json:"save"`
}

type createRecordRequest struct {
	LocationName string   `json:"location_name" validate:"required"`
	Lat          *float64 `json:"lat" validate:"required"`
	Lon          *float64 `json:"lon" validate:"required"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
}

// POST /api/weather/search
func (h *Handler) search(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resolved, err := h.resolver.Resolve(c.Context(), location.Input{
		Query: req.Location.Query,
		Lat:   req.Location.Lat,
		Lon:   req.Location.Lon,
	})
	if err != nil {
		return mapDomainError(err)
	}

	doc, err := h.service.Fetch(c.Context(), resolved.DisplayName, resolved.Lat, resolved.Lon, req.StartDate, req.EndDate)
	if err != nil {
		return mapDomainError(err)
	}

	resp := fiber.Map{"result": doc}
	if req.Save {
		blob, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		rec, err := h.store.Create(c.Context(), resolved.DisplayName, resolved.Lat, resolved.Lon, req.StartDate, req.EndDate, blob)
		if err != nil {
			return err
		}
		resp["saved_record_id"] = rec.ID
	}
	return c.JSON(resp)
}

// POST /api/records
func (h *Handler) createRecord(c *fiber.Ctx) error {
	var req createRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	doc, err := h.service.Fetch(c.Context(), req.LocationName, *req.Lat, *req.Lon, req.StartDate, req.EndDate)
	if err != nil {
		return mapDomainError(err)
	}

	blob, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	rec, err := h.store.Create(c.Context(), req.LocationName, *req.Lat, *req.Lon, req.StartDate, req.EndDate, blob)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

// GET /api/records?skip=&limit=
func (h *Handler) listRecords(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > h.maxListLimit {
		limit = h.maxListLimit
	}

	recs, err := h.store.List(c.Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": recs})
}

// GET /api/records/:id
func (h *Handler) getRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.store.Get(c.Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(rec)
}

// PUT /api/records/:id
func (h *Handler) updateRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	// Unknown body keys fall outside the Patch struct and are ignored
	// silently; only the fixed allow-list of fields can reach the store.
	var patch store.Patch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if patch.IsEmpty() {
		return mapDomainError(store.ErrNoValidFields)
	}

	rec, err := h.store.Update(c.Context(), id, patch)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"message": "updated", "record_id": rec.ID})
}

// DELETE /api/records/:id
func (h *Handler) deleteRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.store.Delete(c.Context(), id); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// GET /api/records/:id/export?format=
func (h *Handler) exportRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	format := c.Query("format", "json")
	if err := export.ValidateFormat(format); err != nil {
		return mapDomainError(err)
	}
	rec, err := h.store.Get(c.Context(), id)
	if err != nil {
		return mapDomainError(err)
	}

	res, err := export.Render(rec, format)
	if err != nil {
		return mapDomainError(err)
	}

	c.Set(fiber.HeaderContentType, res.ContentType)
	if res.Filename != "" {
		c.Set(fiber.HeaderContentDisposition, "attachment; filename="+res.Filename)
	}
	return c.Send(res.Data)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}
	return id, nil
}

// mapDomainError converts domain errors into transport failures. Anything
// unmatched passes through to the centralized error handler as a 500 with
// the message exposed.
func mapDomainError(err error) error {
	var provErr *weather.ProviderError
	switch {
	case errors.Is(err, location.ErrInvalidInput),
		errors.Is(err, location.ErrNotFound),
		errors.Is(err, weather.ErrInvalidDateFormat),
		errors.Is(err, weather.ErrInvalidDateRange),
		errors.Is(err, weather.ErrMissingAPIKey),
		errors.Is(err, store.ErrNoValidFields),
		errors.Is(err, export.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &provErr):
		return fiber.NewError(fiber.StatusBadRequest, provErr.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Record not found")
	default:
		return err
	}
}
