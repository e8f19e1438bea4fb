package response

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/gofiber/fiber/v2"
)

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ResponseErrorModel struct {
	Error ErrorBody `json:"error"`
}

type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func ResponseOKWithData(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func ResponseNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func ResponseRawJson(c *fiber.Ctx, payload []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(payload)
}

func ResponseError(c *fiber.Ctx, statusCode int, code string, message string, details interface{}) error {
	return c.Status(statusCode).JSON(ResponseErrorModel{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

//------------------------------------------
//------------------------------------------

// Paginate builds the {count, next, previous, results} envelope. Links keep
// the request's other query params, sorted for determinism.
func Paginate(path string, params map[string]string, page int, totalPages int, count int64, results interface{}) PaginatedResponse {
	res := PaginatedResponse{
		Count:   count,
		Results: results,
	}
	if page < totalPages {
		next := PageLink(path, params, page+1)
		res.Next = &next
	}
	if page > 1 {
		prev := PageLink(path, params, page-1)
		res.Previous = &prev
	}
	return res
}

func PageLink(path string, params map[string]string, page int) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "page" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := fmt.Sprintf("page=%d", page)
	for _, k := range keys {
		query += "&" + k + "=" + url.QueryEscape(params[k])
	}
	return path + "?" + query
}

func TotalPages(count int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := count / int64(pageSize)
	if count%int64(pageSize) != 0 {
		pages++
	}
	return int(pages)
}
