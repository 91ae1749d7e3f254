package helper

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"blogfeed/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	enTranslations "gopkg.in/go-playground/validator.v9/translations/en"
)

const (
	textError             = `error`
	textOk                = `ok`
	codeSuccess           = 200
	codeBadRequestError   = 400
	codeUnauthorizedError = 401
	codeDatabaseError     = 402
	codeValidationError   = 403
	codeNotFound          = 404
	codeForbidden         = 405
	codeConflict          = 409
)

// ResponseHelper ...
type ResponseHelper struct {
	C          *gin.Context
	Status     string
	Message    string
	Data       interface{}
	Code       int // not the http code
	CodeType   string
	HTTPStatus int
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a helper with an English validator translator.
// Field names in validation errors come from the form tag.
func NewHTTPHelper() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	return &HTTPHelper{Validate: validate, Translator: trans}
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var validationErr models.ErrorValidation
	var forbiddenErr models.ErrorForbidden
	var conflictErr models.ErrorConflict
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string, httpStatus int) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType, httpStatus}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string, httpStatus int) error {
	res := u.SetResponse(c, textError, message, data, code, codeType, httpStatus)

	return u.SendResponse(res)
}

// SendServiceError ...
// Send the response matching an error returned by a service.
func (u *HTTPHelper) SendServiceError(c *gin.Context, err error) error {
	var validationErr models.ErrorValidation
	if errors.As(err, &validationErr) {
		data := u.EmptyJsonMap()
		if validationErr.Field != "" {
			data[validationErr.Field] = []string{validationErr.Message}
		}
		return u.SendError(c, err.Error(), data, codeValidationError, `validationError`, http.StatusBadRequest)
	}

	switch status := u.GetStatusCode(err); status {
	case http.StatusForbidden:
		return u.SendForbiddenError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusConflict:
		return u.SendError(c, err.Error(), u.EmptyJsonMap(), codeConflict, `conflict`, status)
	default:
		_ = c.Error(err)
		return u.SendDatabaseError(c, "Internal server error", u.EmptyJsonMap())
	}
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeBadRequestError, `badRequest`, http.StatusBadRequest)
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) error {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := err.Field()
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	c.JSON(http.StatusBadRequest, map[string]interface{}{
		"code":         codeValidationError,
		"code_type":    "validationError",
		"code_message": errorResponse,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendDatabaseError ...
// Send database error response to consumers.
func (u *HTTPHelper) SendDatabaseError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeDatabaseError, `databaseError`, http.StatusInternalServerError)
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeUnauthorizedError, `unAuthorized`, http.StatusUnauthorized)
}

// SendForbiddenError ...
// Send forbidden response to consumers.
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeForbidden, `forbidden`, http.StatusForbidden)
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeNotFound, `notFound`, http.StatusNotFound)
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`, http.StatusOK)

	return u.SendResponse(res)
}

// SendCreated ...
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`, http.StatusCreated)

	return u.SendResponse(res)
}

// SendPaged ...
// Send a page of items with its paging block.
func (u *HTTPHelper) SendPaged(c *gin.Context, message string, items interface{}, count, page, pageSize int) error {
	return u.SendSuccess(c, message, map[string]interface{}{
		"items":  items,
		"paging": u.GeneratePaging(c, page, pageSize, count),
	})
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	status := res.HTTPStatus
	if status == 0 {
		status = http.StatusOK
	}

	res.C.JSON(status, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL, keeping the other query parameters
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, pageSize int) string {
	r := c.Request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	return scheme + "://" + r.Host + r.URL.Path + "?" + query.Encode()
}

// GeneratePaging builds the paging block for offset pages. Feeds carry no
// total, so a full page is taken to mean there may be a next one.
func (u *HTTPHelper) GeneratePaging(c *gin.Context, page, pageSize, count int) map[string]interface{} {
	prevURL, nextURL, firstURL := "", "", ""

	if page > 1 {
		prevURL = u.GetPagingUrl(c, page-1, pageSize)
		firstURL = u.GetPagingUrl(c, 1, pageSize)
	}
	if count >= pageSize {
		nextURL = u.GetPagingUrl(c, page+1, pageSize)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
	}

	return map[string]interface{}{
		"per_page":     pageSize,
		"current_page": page,
		"count":        count,
		"links":        links,
	}
}
