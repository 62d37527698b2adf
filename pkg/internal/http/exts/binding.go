package exts

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = validator.New(validator.WithRequiredStructEnabled())

func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err := validation.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, key string) (uint, error) {
	id, err := c.ParamsInt(key, 0)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+", must be a positive integer")
	}
	return uint(id), nil
}

// QueryBoolPtr returns nil when the query key is absent.
func QueryBoolPtr(c *fiber.Ctx, key string) *bool {
	if len(c.Query(key)) == 0 {
		return nil
	}
	value := c.QueryBool(key)
	return &value
}
