package v1

import (
	"net/http"
	"time"

	"github.com/envelope-zero/forecast/internal/httputil"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/gin-gonic/gin"
)

type TransactionPosting struct {
	PostedDate time.Time `json:"postedDate" example:"2024-03-16T00:00:00Z"` // Day the transaction cleared, defaults to today
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Param			id	path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id}/post [options]
func OptionsPostTransaction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Post transaction
// @Description	Marks a transaction as posted and applies it to the stored balances of the affected accounts, credit cards and loans
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[models.Transaction]
// @Failure		400		{object}	Response[models.Transaction]
// @Failure		404		{object}	Response[models.Transaction]
// @Failure		409		{object}	Response[models.Transaction]
// @Failure		500		{object}	Response[models.Transaction]
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			posting	body		TransactionPosting	false	"Posting"
// @Router			/v1/transactions/{id}/post [post]
func PostTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), Response[models.Transaction]{Error: errorPtr(err)})
		return
	}

	var posting TransactionPosting
	if c.Request.ContentLength != 0 {
		err = httputil.BindData(c, &posting)
		if err != nil {
			c.JSON(status(err), Response[models.Transaction]{Error: errorPtr(err)})
			return
		}
	}

	if posting.PostedDate.IsZero() {
		posting.PostedDate = types.Day(time.Now())
	}

	transaction, err := models.PostTransaction(models.DB, uri.ID.UUID, posting.PostedDate)
	if err != nil {
		c.JSON(status(err), Response[models.Transaction]{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, Response[models.Transaction]{Data: &transaction})
}
