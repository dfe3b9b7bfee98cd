package v1

import (
	"net/http"

	"github.com/envelope-zero/forecast/internal/httputil"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// record is implemented by pointers to all models that are managed
// through the generic resource handlers.
type record[M any] interface {
	*M
	Self() string
	Base() *models.DefaultModel
}

// queryFilter is a filter for list requests on a resource.
//
// Field names of the filter must match the field names of the model
// for all fields that are compared for equality.
type queryFilter[M any] interface {
	model() M
	apply(*gorm.DB) *gorm.DB
	page() Page
}

// resource implements the CRUD endpoints for a model.
type resource[M any, P record[M], F queryFilter[M]] struct {
	// order is the ORDER BY clause for lists
	order string

	// preload lists the associations that are returned with the resource
	preload []string

	// omit lists the associations that are not written on update
	omit []string

	// validate is called for every resource before it is created
	validate func(m *M) error

	// checkUpdate is called with the stored and the updated resource
	// before the update is written
	checkUpdate func(stored, updated *M) error

	// afterUpdate is called in the same database transaction after the
	// resource has been updated
	afterUpdate func(tx *gorm.DB, m *M) error

	// remove replaces the default deletion
	remove func(c *gin.Context, m *M) error
}

func (r resource[M, P, F]) register(g *gin.RouterGroup) {
	{
		g.OPTIONS("", r.optionsList)
		g.GET("", r.list)
		g.POST("", r.create)
	}

	{
		g.OPTIONS("/:id", r.optionsDetail)
		g.GET("/:id", r.get)
		g.PATCH("/:id", r.update)
		g.DELETE("/:id", r.delete)
	}
}

func (r resource[M, P, F]) preloaded(q *gorm.DB) *gorm.DB {
	for _, association := range r.preload {
		q = q.Preload(association)
	}
	return q
}

// find loads the resource with the ID from the URI.
func (r resource[M, P, F]) find(c *gin.Context) (M, error) {
	var m M

	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return m, err
	}

	err = r.preloaded(models.DB).First(P(&m), uri.ID).Error
	return m, err
}

func (r resource[M, P, F]) optionsList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (r resource[M, P, F]) optionsDetail(c *gin.Context) {
	_, err := r.find(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// create creates resources from the list of submitted resource data.
//
// The response code is the highest response code number that a single
// creation would have caused. If it is not equal to 201, at least one
// resource has an error.
func (r resource[M, P, F]) create(c *gin.Context) {
	var data []M

	err := httputil.BindData(c, &data)
	if err != nil {
		c.JSON(status(err), CreateResponse[M]{Error: errorPtr(err)})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	res := CreateResponse[M]{}

	for i := range data {
		m := P(&data[i])

		// IDs and timestamps are always set by the database
		*m.Base() = models.DefaultModel{}

		if r.validate != nil {
			if err := r.validate(m); err != nil {
				status = res.appendError(err, status)
				continue
			}
		}

		err = models.DB.Create(m).Error
		if err != nil {
			status = res.appendError(err, status)
			continue
		}

		created := data[i]
		res.Data = append(res.Data, Response[M]{Data: &created})
	}

	c.JSON(status, res)
}

func (r resource[M, P, F]) list(c *gin.Context) {
	var filter F
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ListResponse[M]{Error: errorPtr(httputil.ErrInvalidQuery)})
		return
	}

	// Get the parameters set in the query string
	queryFields := httputil.GetURLFields(c.Request.URL, filter)

	model := filter.model()
	q := filter.apply(models.DB.Model(P(new(M))).Where(&model, queryFields...)).Session(&gorm.Session{})

	var count int64
	err := q.Count(&count).Error
	if err != nil {
		c.JSON(status(err), ListResponse[M]{Error: errorPtr(err)})
		return
	}

	// Default to 50 resources and set the limit
	page := filter.page()
	limit := 50
	if c.Request.URL.Query().Has("limit") {
		limit = page.Limit
	}

	var result []M
	err = r.preloaded(q).
		Order(r.order).
		Offset(int(page.Offset)).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		c.JSON(status(err), ListResponse[M]{Error: errorPtr(err)})
		return
	}

	if result == nil {
		result = make([]M, 0)
	}

	c.JSON(http.StatusOK, ListResponse[M]{
		Data: result,
		Pagination: &Pagination{
			Count:  len(result),
			Total:  count,
			Offset: page.Offset,
			Limit:  limit,
		},
	})
}

func (r resource[M, P, F]) get(c *gin.Context) {
	m, err := r.find(c)
	if err != nil {
		c.JSON(status(err), Response[M]{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, Response[M]{Data: &m})
}

// update updates a resource. Only values to be updated need to be specified.
func (r resource[M, P, F]) update(c *gin.Context) {
	m, err := r.find(c)
	if err != nil {
		c.JSON(status(err), Response[M]{Error: errorPtr(err)})
		return
	}

	p := P(&m)
	base := *p.Base()

	err = httputil.BindData(c, p)
	if err != nil {
		c.JSON(status(err), Response[M]{Error: errorPtr(err)})
		return
	}
	*p.Base() = base

	if r.checkUpdate != nil {
		// Binding writes through pointer fields, the stored state is loaded separately
		stored, err := r.find(c)
		if err != nil {
			c.JSON(status(err), Response[M]{Error: errorPtr(err)})
			return
		}

		if err := r.checkUpdate(&stored, p); err != nil {
			c.JSON(status(err), Response[M]{Error: errorPtr(err)})
			return
		}
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if len(r.omit) > 0 {
			tx = tx.Omit(r.omit...)
		}

		err := tx.Save(p).Error
		if err != nil {
			return err
		}

		if r.afterUpdate != nil {
			return r.afterUpdate(tx, p)
		}
		return nil
	})
	if err != nil {
		c.JSON(status(err), Response[M]{Error: errorPtr(err)})
		return
	}

	// Reload to return the resource as stored
	m, err = r.find(c)
	if err != nil {
		c.JSON(status(err), Response[M]{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, Response[M]{Data: &m})
}

func (r resource[M, P, F]) delete(c *gin.Context) {
	m, err := r.find(c)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	if r.remove != nil {
		err = r.remove(c, &m)
	} else {
		err = models.DB.Delete(P(&m)).Error
	}
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	log.Debug().Str("resource", P(&m).Self()).Str("id", P(&m).Base().ID.String()).Msg("deleted")
	c.JSON(http.StatusNoContent, gin.H{})
}
