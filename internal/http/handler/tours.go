package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/apperror"
	"tourapi/internal/geo"
	"tourapi/internal/repository"
	"tourapi/internal/service"
)

var topCheapArgs = [][2]string{
	{"limit", "5"},
	{"sort", "-ratingsAverage,price"},
	{"fields", "name,price,ratingsAverage,summary,difficulty"},
}

// TopCheapAlias rewrites the query string to the five best rated, cheapest tours.
func TopCheapAlias() fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Request().URI().QueryArgs()
		for _, kv := range topCheapArgs {
			args.Del(kv[0])
			args.Add(kv[0], kv[1])
		}
		return c.Next()
	}
}

// ListTours godoc
// @Summary List tours
// @Tags tours
// @Produce json
// @Param sort query string false "Sort fields, e.g. -ratingsAverage,price"
// @Param fields query string false "Field selection"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/v1/tours [get]
func ListTours(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := listQuery(c, repository.TourSchema)
		if err != nil {
			return err
		}
		tours, err := svc.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		return sendList(c, q, "data", tours, len(tours))
	}
}

// GetTour godoc
// @Summary Get a tour with its guides and reviews
// @Tags tours
// @Produce json
// @Param id path string true "Tour ID (UUID)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/v1/tours/{id} [get]
func GetTour(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", t)
	}
}

// CreateTour godoc
// @Summary Create a tour
// @Tags tours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/v1/tours [post]
func CreateTour(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.Create(c.UserContext(), c.Body())
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusCreated, "data", t)
	}
}

// UpdateTour accepts a JSON patch or a multipart form with imageCover and images files.
// @Summary Update a tour
// @Tags tours
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tour ID (UUID)"
// @Success 200 {object} map[string]any
// @Router /api/v1/tours/{id} [patch]
func UpdateTour(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		patch := c.Body()
		var imgs *service.TourImages
		if form, ferr := c.MultipartForm(); ferr == nil {
			if patch, err = formPatch(form.Value); err != nil {
				return err
			}
			files, closeAll, err := openTourImages(form)
			if err != nil {
				return err
			}
			defer closeAll()
			imgs = files
		}

		t, err := svc.Update(c.UserContext(), id, patch, imgs)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", t)
	}
}

func DeleteTour(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// TourStats godoc
// @Summary Rating statistics grouped by difficulty
// @Tags tours
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/tours/tour-stats [get]
func TourStats(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "stats", stats)
	}
}

// MonthlyPlan godoc
// @Summary Tour starts per month of a year
// @Tags tours
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Success 200 {object} map[string]any
// @Router /api/v1/tours/monthly-plan/{year} [get]
func MonthlyPlan(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil {
			return apperror.BadRequest("Please provide a valid year.")
		}
		plan, err := svc.MonthlyPlan(c.UserContext(), year)
		if err != nil {
			return err
		}
		return sendList(c, nil, "plan", plan, len(plan))
	}
}

// ToursWithin godoc
// @Summary Tours starting within a distance of a point
// @Tags tours
// @Produce json
// @Param distance path number true "Radius"
// @Param latlng path string true "lat,lng"
// @Param unit path string true "mi or km"
// @Success 200 {object} map[string]any
// @Router /api/v1/tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func ToursWithin(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		distance, err := strconv.ParseFloat(c.Params("distance"), 64)
		if err != nil {
			return apperror.BadRequest("Please provide a valid distance.")
		}
		lat, lng, err := geo.ParseLatLng(c.Params("latlng"))
		if err != nil {
			return err
		}
		unit, err := geo.ParseUnit(c.Params("unit"))
		if err != nil {
			return err
		}
		tours, err := svc.Within(c.UserContext(), distance, lat, lng, unit)
		if err != nil {
			return err
		}
		return sendList(c, nil, "data", tours, len(tours))
	}
}

// Distances godoc
// @Summary Distance from a point to every tour start
// @Tags tours
// @Produce json
// @Param latlng path string true "lat,lng"
// @Param unit path string true "mi or km"
// @Success 200 {object} map[string]any
// @Router /api/v1/tours/distances/{latlng}/unit/{unit} [get]
func Distances(svc service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, err := geo.ParseLatLng(c.Params("latlng"))
		if err != nil {
			return err
		}
		unit, err := geo.ParseUnit(c.Params("unit"))
		if err != nil {
			return err
		}
		distances, err := svc.Distances(c.UserContext(), lat, lng, unit)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", distances)
	}
}

// Form values are strings; these tour fields are sent to the service as their JSON types.
var (
	numericTourFields = map[string]bool{
		"duration": true, "maxGroupSize": true, "price": true, "priceDiscount": true, "ratingsAverage": true,
	}
	boolTourFields = map[string]bool{"premiumTour": true}
)

func formPatch(values map[string][]string) ([]byte, error) {
	patch := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]
		switch {
		case numericTourFields[k]:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, apperror.BadRequest("Invalid input data. " + k + " must be a number")
			}
			patch[k] = n
		case boolTourFields[k]:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, apperror.BadRequest("Invalid input data. " + k + " must be true or false")
			}
			patch[k] = b
		default:
			patch[k] = v
		}
	}
	return json.Marshal(patch)
}

func openTourImages(form *multipart.Form) (*service.TourImages, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	open := func(fh *multipart.FileHeader) (io.Reader, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Wrap(err, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "Cannot open uploaded file")
		}
		opened = append(opened, f)
		return f, nil
	}

	imgs := &service.TourImages{}
	if covers := form.File["imageCover"]; len(covers) > 0 {
		r, err := open(covers[0])
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		imgs.Cover = r
	}

	for _, fh := range form.File["images"] {
		r, err := open(fh)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		imgs.Images = append(imgs.Images, r)
	}

	if imgs.Cover == nil && len(imgs.Images) == 0 {
		return nil, closeAll, nil
	}
	return imgs, closeAll, nil
}
