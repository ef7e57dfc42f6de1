package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	roleCodePattern       = regexp.MustCompile(`^[a-z]+$`)
	permissionCodePattern = regexp.MustCompile(`^[a-z0-9_.-]+:[a-z0-9_.-]+$`)
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// report json names instead of struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	for tag, fn := range map[string]playgroundvalidator.Func{
		"password":        validatePassword,
		"role_code":       validateRoleCode,
		"permission_code": validatePermissionCode,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
		}
	}

	return &CustomValidator{validator: v}
}

// validatePassword requires an upper and a lower case letter plus a digit or a symbol.
func validatePassword(fl playgroundvalidator.FieldLevel) bool {
	var upper, lower, other bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}
	return upper && lower && other
}

func validateRoleCode(fl playgroundvalidator.FieldLevel) bool {
	return roleCodePattern.MatchString(fl.Field().String())
}

func validatePermissionCode(fl playgroundvalidator.FieldLevel) bool {
	return permissionCodePattern.MatchString(fl.Field().String())
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Messages renders one client-facing message per failed field.
func (ve ValidationErrors) Messages() []string {
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, message(fe))
	}
	return out
}

func message(fe playgroundvalidator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "uuid4", "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "http_url":
		return fmt.Sprintf("%s must be an http or https URL", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "password":
		return fmt.Sprintf("%s must contain uppercase, lowercase, and number/special character", field)
	case "role_code", "lowercase":
		return fmt.Sprintf("%s must contain only lowercase letters (a-z)", field)
	case "permission_code":
		return fmt.Sprintf("%s must be in format <rolecode>:<action> (lowercase)", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// SignUpRequest is the body of POST /auth/sign-up.
type SignUpRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=255"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8,max=32,password"`
	Image     *string  `json:"image" validate:"omitempty,http_url"`
	RoleCodes []string `json:"roleCodes" validate:"required,min=1,dive,role_code"`
}

// SignInRequest only checks presence. Credential rules are not revealed at sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type SelectRoleRequest struct {
	RoleID        string `json:"roleId" validate:"required,uuid4"`
	ExchangeToken string `json:"exchangeToken" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateRoleRequest struct {
	Code        string  `json:"code" validate:"required,role_code"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type AssignRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid4"`
	RoleID string `json:"roleId" validate:"required,uuid4"`
}

type CreatePermissionRequest struct {
	Code        string  `json:"code" validate:"required,permission_code"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type AssignPermissionRequest struct {
	PermissionID string `json:"permissionId" validate:"required,uuid4"`
	RoleID       string `json:"roleId" validate:"required,uuid4"`
}

type CreateMenuRequest struct {
	Slug                string   `json:"slug" validate:"required"`
	Name                string   `json:"name" validate:"required"`
	Icon                *string  `json:"icon"`
	Href                *string  `json:"href" validate:"omitempty,url"`
	ResourcePermissions []string `json:"resourcePermissions" validate:"omitempty,unique,dive,permission_code"`
	ParentID            *string  `json:"parentId" validate:"omitempty,uuid4"`
}

// ListQuery is the paging query shared by list endpoints.
type ListQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
