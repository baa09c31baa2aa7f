package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Nombres de campo como en el JSON (o el query param) para los mensajes.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindBody parsea y valida el body. Devuelve false si ya escribió la respuesta de error.
func bindBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return checkStruct(c, out)
}

// bindQuery parsea y valida los query params.
func bindQuery(c *fiber.Ctx, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return checkStruct(c, out)
}

func checkStruct(c *fiber.Ctx, out any) (bool, error) {
	err := validate.Struct(out)
	if err == nil {
		return true, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fieldPath(fe), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(fe), fe.Tag()))
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: fmt.Sprintf("%d campo(s) inválido(s)", len(msgs)),
		Details: msgs,
	})
}

// fieldPath ruta del campo sin el nombre del struct raíz (ej. movements[1].kind).
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// writeError traduce errores de dominio a dto.ErrorResponse. Los errores de stock y cantidad
// llevan los valores numéricos; las denegaciones nombran la capability o el tier faltante.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", err.Error()

	var (
		stockErr *domain.InsufficientStockError
		qtyErr   *domain.InvalidQuantityError
		capErr   *domain.CapabilityDeniedError
		grantErr *domain.UnauthorizedGrantError
	)
	switch {
	case errors.As(err, &stockErr):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
		msg = fmt.Sprintf("%s; faltante %s", err.Error(), stockErr.Shortfall().String())
	case errors.As(err, &qtyErr):
		status, code = fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.As(err, &capErr):
		status, code = fiber.StatusForbidden, "CAPABILITY_DENIED"
	case errors.As(err, &grantErr):
		status, code = fiber.StatusBadRequest, "UNAUTHORIZED_GRANT"
	case errors.Is(err, domain.ErrProductNotFound):
		status, code = fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrProductInactive):
		status, code = fiber.StatusConflict, "PRODUCT_INACTIVE"
	case errors.Is(err, domain.ErrProductReferenced):
		status, code = fiber.StatusConflict, "PRODUCT_REFERENCED"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrBatchTooLarge):
		status, code = fiber.StatusBadRequest, "BATCH_TOO_LARGE"
	case errors.Is(err, domain.ErrInvalidMovementKind), errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"
	case errors.Is(err, domain.ErrProfileInactive):
		status, code = fiber.StatusForbidden, "PROFILE_INACTIVE"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrAuditStoreUnavailable):
		status, code = fiber.StatusServiceUnavailable, "AUDIT_UNAVAILABLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
