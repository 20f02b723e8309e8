package handler

import (
	"errors"
	"net/http"

	"github.com/mpancino/myassetplace/internal/ledger"
	"github.com/mpancino/myassetplace/internal/models"
	"github.com/mpancino/myassetplace/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user set by AuthMiddleware. Writes the
// error response itself when missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// ledgerError maps the ledger core's typed errors onto the JSON envelope.
// All three are recoverable: the ledger is left in its last good state and
// the client decides what to retry.
func ledgerError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	var nf *ledger.NotFoundError
	var ise *ledger.InvalidStateError
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, ve.Error())
	case errors.As(err, &nf):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, nf.Error())
	case errors.As(err, &ise):
		util.Error(c, http.StatusConflict, util.CodeConflict, ise.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed")
	}
}
