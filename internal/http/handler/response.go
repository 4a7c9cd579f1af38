package handler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tourapi/internal/apperror"
	"tourapi/internal/http/middleware"
	"tourapi/internal/query"
	"tourapi/internal/views"
)

// sendData writes {"status":"success","data":{key: v}}.
func sendData(c *fiber.Ctx, status int, key string, v any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{key: v},
	})
}

// sendList writes a list envelope with the result count. The query's field selection is applied.
func sendList(c *fiber.Ctx, q *query.Query, key string, items any, n int) error {
	out := items
	if q != nil {
		projected, err := q.Project(items)
		if err != nil {
			return err
		}
		out = projected
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"results": n,
		"data":    fiber.Map{key: out},
	})
}

// paramID reads a UUID path parameter.
func paramID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperror.New(fiber.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid id: %s.", id))
	}
	return id, nil
}

// listQuery parses the request's query string against s.
// Arguments are read from the parsed args so rewrites by TopCheapAlias apply.
func listQuery(c *fiber.Ctx, s query.Schema) (*query.Query, error) {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	return query.Parse(s, values)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Wrap(err, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	return nil
}

// siteURL resolves the public site root for links in mails and checkout redirects.
func siteURL(c *fiber.Ctx, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return c.BaseURL()
}

func render(c *fiber.Ctx, p views.Page, body templ.Component) error {
	if p.User == nil {
		p.User = middleware.CurrentUser(c)
	}
	if p.Alert == "" {
		p.Alert = middleware.Alert(c)
	}
	c.Type("html", "utf-8")
	return views.Layout(p, body).Render(c.UserContext(), c.Response().BodyWriter())
}
