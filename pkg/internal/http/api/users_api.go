package api

import (
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listUsers(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	page, limit, offset := exts.GetPagination(c)

	items, count, err := services.ListUsers(limit, offset, c.Query("search"), c.Query("role"))
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

// ensureSelfOrAdmin lets users read their own records.
func ensureSelfOrAdmin(c *fiber.Ctx, id uint) error {
	user, ok := exts.GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized)
	} else if user.ID != id && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "you can only access your own account")
	}
	return nil
}

func getUser(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "userId")
	if err != nil {
		return err
	}
	if err := ensureSelfOrAdmin(c, id); err != nil {
		return err
	}

	user, err := services.GetUserWithID(id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func listUserActivities(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "userId")
	if err != nil {
		return err
	}
	if err := ensureSelfOrAdmin(c, id); err != nil {
		return err
	}
	page, limit, offset := exts.GetPagination(c)

	items, count, err := services.ListUserActivities(id, limit, offset)
	if err != nil {
		return err
	}

	return exts.Paginated(c, items, page, limit, count)
}

func createUser(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data struct {
		Email     string  `json:"email" validate:"required,email"`
		Username  string  `json:"username" validate:"required,min=3,max=64"`
		Password  string  `json:"password" validate:"required,min=8"`
		FirstName string  `json:"first_name" validate:"max=128"`
		LastName  string  `json:"last_name" validate:"max=128"`
		Avatar    *string `json:"avatar"`
		Role      string  `json:"role" validate:"omitempty,oneof=admin editor user"`
		IsActive  *bool   `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.NewUser(services.UserInput{
		Email:     data.Email,
		Username:  data.Username,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Avatar:    data.Avatar,
		Role:      data.Role,
		IsActive:  data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func editUser(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "userId")
	if err != nil {
		return err
	}

	var data struct {
		Email     *string `json:"email" validate:"omitempty,email"`
		Username  *string `json:"username" validate:"omitempty,min=3,max=64"`
		Password  *string `json:"password" validate:"omitempty,min=8"`
		FirstName *string `json:"first_name" validate:"omitempty,max=128"`
		LastName  *string `json:"last_name" validate:"omitempty,max=128"`
		Avatar    *string `json:"avatar"`
		Role      *string `json:"role" validate:"omitempty,oneof=admin editor user"`
		IsActive  *bool   `json:"is_active"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.EditUser(id, services.UserPatch{
		Email:     data.Email,
		Username:  data.Username,
		Password:  data.Password,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Avatar:    data.Avatar,
		Role:      data.Role,
		IsActive:  data.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func deleteUser(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	id, err := exts.ParamID(c, "userId")
	if err != nil {
		return err
	}
	if current, _ := exts.GetUser(c); current.ID == id {
		return services.ValidationError("you cannot delete your own account")
	}

	if err := services.DeleteUser(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
