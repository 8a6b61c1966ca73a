package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPStatus maps a marketplace error to the status code the API surfaces.
func HTTPStatus(err error) int {
	var denomErr *NativeDenomNotAllowedError
	var assetErr *AssetNotAllowedError
	var fundsErr *WrongFundsAmountError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotOnSale):
		return http.StatusConflict
	case errors.Is(err, ErrWrongInput),
		errors.Is(err, ErrInvalidTokenType),
		errors.Is(err, ErrAssetNotSupported),
		errors.Is(err, ErrSendSingleNative),
		errors.Is(err, ErrOverflow),
		errors.As(err, &denomErr),
		errors.As(err, &assetErr),
		errors.As(err, &fundsErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Abort writes the error as a JSON body with the mapped status and aborts the
// gin handler chain.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(HTTPStatus(err), gin.H{"error": err.Error()})
}
