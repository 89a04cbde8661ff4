package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/repo"
	"github.com/tbourn/go-company-site/internal/services"
)

// crudService is the shape shared by every content service.
type crudService[T, In, P any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id string, in In) (*T, error)
	Patch(ctx context.Context, id string, p P) (*T, error)
	Delete(ctx context.Context, id string) error
}

type scopeFn = func(*gorm.DB) *gorm.DB

// resource mounts the admin CRUD endpoints of one content kind. List and
// reorder differ per kind (products are scoped by category) and are
// injected.
type resource[T, In, P any] struct {
	name    string
	db      *gorm.DB
	svc     crudService[T, In, P]
	list    func(c *gin.Context) ([]T, error)
	reorder func(c *gin.Context, req ReorderRequest) error
	// scope narrows the list ETag to what list returns.
	scope func(c *gin.Context) (key string, scopes []scopeFn)
}

// ReorderRequest is the body of POST /api/admin/<kind>/reorder. The ids may
// be sent as "ids" or under the kind-specific alias the admin UI uses.
type ReorderRequest struct {
	IDs            []string `json:"ids"            example:"c7a1...,0b9e..."`
	JobIDs         []string `json:"jobIds"`
	ProductIDs     []string `json:"productIds"`
	CategoryIDs    []string `json:"categoryIds"`
	TestimonialIDs []string `json:"testimonialIds"`
	StatisticIDs   []string `json:"statisticIds"`
	// CategoryID scopes a product reorder.
	CategoryID string `json:"categoryId"`
}

// List returns the first non-empty id list.
func (r ReorderRequest) List() []string {
	for _, l := range [][]string{r.IDs, r.JobIDs, r.ProductIDs, r.CategoryIDs, r.TestimonialIDs, r.StatisticIDs} {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func (r *resource[T, In, P]) mount(g *gin.RouterGroup) {
	rg := g.Group("/" + r.name)
	rg.GET("", r.listItems)
	rg.POST("", r.create)
	rg.POST("/reorder", r.reorderItems)
	rg.GET("/:id", r.get)
	rg.PUT("/:id", r.update)
	rg.PATCH("/:id", r.patch)
	rg.DELETE("/:id", r.remove)
}

// listItems godoc
// @Summary     List content (admin)
// @Description Returns every row, inactive included, in display order. Supports weak ETag via If-None-Match.
// @Tags        Admin content
// @Produce     json
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       category_id    query   string  false  "Products only: limit to one category"
// @Success     200  {array}   object
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs [get]
// @Router      /api/admin/categories [get]
// @Router      /api/admin/products [get]
// @Router      /api/admin/testimonials [get]
// @Router      /api/admin/statistics [get]
func (r *resource[T, In, P]) listItems(c *gin.Context) {
	key, scopes := r.name, []scopeFn(nil)
	if r.scope != nil {
		key, scopes = r.scope(c)
	}
	if notModified[T](c, r.db, key, scopes...) {
		return
	}
	items, err := r.list(c)
	if err != nil {
		failService(c, r.name+".list", "", err)
		return
	}
	if items == nil {
		items = []T{}
	}
	ok(c, http.StatusOK, items)
}

// get godoc
// @Summary     Get one content row (admin)
// @Tags        Admin content
// @Produce     json
// @Param       id   path      string  true  "Row id"
// @Success     200  {object}  object
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs/{id} [get]
// @Router      /api/admin/categories/{id} [get]
// @Router      /api/admin/products/{id} [get]
// @Router      /api/admin/testimonials/{id} [get]
// @Router      /api/admin/statistics/{id} [get]
func (r *resource[T, In, P]) get(c *gin.Context) {
	id := c.Param("id")
	item, err := r.svc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, r.name+".get", id, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// create godoc
// @Summary     Create a content row (admin)
// @Description Appends the row at the end of the display order and revalidates the public pages.
// @Tags        Admin content
// @Accept      json
// @Produce     json
// @Param       body  body      object  true  "Full row"
// @Success     201   {object}  object
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs [post]
// @Router      /api/admin/categories [post]
// @Router      /api/admin/products [post]
// @Router      /api/admin/testimonials [post]
// @Router      /api/admin/statistics [post]
func (r *resource[T, In, P]) create(c *gin.Context) {
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	item, err := r.svc.Create(c.Request.Context(), in)
	if err != nil {
		failService(c, r.name+".create", "", err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// update godoc
// @Summary     Replace a content row (admin)
// @Tags        Admin content
// @Accept      json
// @Produce     json
// @Param       id    path      string  true  "Row id"
// @Param       body  body      object  true  "Full row"
// @Success     200   {object}  object
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs/{id} [put]
// @Router      /api/admin/categories/{id} [put]
// @Router      /api/admin/products/{id} [put]
// @Router      /api/admin/testimonials/{id} [put]
// @Router      /api/admin/statistics/{id} [put]
func (r *resource[T, In, P]) update(c *gin.Context) {
	id := c.Param("id")
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	item, err := r.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		failService(c, r.name+".update", id, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// patch godoc
// @Summary     Partially update a content row (admin)
// @Description Only fields present in the body change; toggling is_active is the usual use.
// @Tags        Admin content
// @Accept      json
// @Produce     json
// @Param       id    path      string  true  "Row id"
// @Param       body  body      object  true  "Fields to change"
// @Success     200   {object}  object
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs/{id} [patch]
// @Router      /api/admin/categories/{id} [patch]
// @Router      /api/admin/products/{id} [patch]
// @Router      /api/admin/testimonials/{id} [patch]
// @Router      /api/admin/statistics/{id} [patch]
func (r *resource[T, In, P]) patch(c *gin.Context) {
	id := c.Param("id")
	var p P
	if err := c.ShouldBindJSON(&p); err != nil {
		failBinding(c, err)
		return
	}
	item, err := r.svc.Patch(c.Request.Context(), id, p)
	if err != nil {
		failService(c, r.name+".patch", id, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// remove godoc
// @Summary     Delete a content row (admin)
// @Description Categories still referenced by products are refused with 400.
// @Tags        Admin content
// @Produce     json
// @Param       id   path      string  true  "Row id"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "cannot delete category: N product(s) still reference it"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/jobs/{id} [delete]
// @Router      /api/admin/categories/{id} [delete]
// @Router      /api/admin/products/{id} [delete]
// @Router      /api/admin/testimonials/{id} [delete]
// @Router      /api/admin/statistics/{id} [delete]
func (r *resource[T, In, P]) remove(c *gin.Context) {
	id := c.Param("id")
	if err := r.svc.Delete(c.Request.Context(), id); err != nil {
		failService(c, r.name+".delete", id, err)
		return
	}
	success(c)
}

// reorderItems godoc
// @Summary     Reorder content (admin)
// @Description Sets each row's position to its index in the list. Rows are updated independently; on failure the rows already moved keep their position and the error is returned.
// @Tags        Admin content
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ReorderRequest  true  "Ordered ids"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse  "Partially applied"
// @Router      /api/admin/jobs/reorder [post]
// @Router      /api/admin/categories/reorder [post]
// @Router      /api/admin/products/reorder [post]
// @Router      /api/admin/testimonials/reorder [post]
// @Router      /api/admin/statistics/reorder [post]
func (r *resource[T, In, P]) reorderItems(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	if err := r.reorder(c, req); err != nil {
		failService(c, r.name+".reorder", req.CategoryID, err)
		return
	}
	success(c)
}

// notModified sets a weak ETag derived from the row count and the latest
// updated_at of the listed rows, and answers 304 when If-None-Match matches.
// Stats errors skip the ETag.
func notModified[T any](c *gin.Context, db *gorm.DB, key string, scopes ...scopeFn) bool {
	if db == nil {
		return false
	}
	count, maxTS, err := repo.TableStats[T](c.Request.Context(), db, scopes...)
	if err != nil {
		return false
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d"`, key, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// MountAdmin registers the guarded admin JSON API on g (/api/admin).
func (h *Handlers) MountAdmin(g *gin.RouterGroup) {
	d := h.d
	if d.Jobs != nil {
		(&resource[domain.Job, services.JobInput, services.JobPatch]{
			name: "jobs", db: d.DB, svc: d.Jobs,
			list:    func(c *gin.Context) ([]domain.Job, error) { return d.Jobs.List(c.Request.Context()) },
			reorder: func(c *gin.Context, req ReorderRequest) error { return d.Jobs.Reorder(c.Request.Context(), req.List()) },
		}).mount(g)
	}
	if d.Categories != nil {
		(&resource[domain.Category, services.CategoryInput, services.CategoryPatch]{
			name: "categories", db: d.DB, svc: d.Categories,
			list: func(c *gin.Context) ([]domain.Category, error) { return d.Categories.List(c.Request.Context()) },
			reorder: func(c *gin.Context, req ReorderRequest) error {
				return d.Categories.Reorder(c.Request.Context(), req.List())
			},
		}).mount(g)
	}
	if d.Products != nil {
		(&resource[domain.Product, services.ProductInput, services.ProductPatch]{
			name: "products", db: d.DB, svc: d.Products,
			list: func(c *gin.Context) ([]domain.Product, error) {
				return d.Products.List(c.Request.Context(), c.Query("category_id"))
			},
			reorder: func(c *gin.Context, req ReorderRequest) error {
				return d.Products.Reorder(c.Request.Context(), req.CategoryID, req.List())
			},
			scope: func(c *gin.Context) (string, []scopeFn) {
				if cat := c.Query("category_id"); cat != "" {
					return "products:" + cat, []scopeFn{repo.InCategory(cat)}
				}
				return "products", nil
			},
		}).mount(g)
	}
	if d.Testimonials != nil {
		(&resource[domain.Testimonial, services.TestimonialInput, services.TestimonialPatch]{
			name: "testimonials", db: d.DB, svc: d.Testimonials,
			list: func(c *gin.Context) ([]domain.Testimonial, error) { return d.Testimonials.List(c.Request.Context()) },
			reorder: func(c *gin.Context, req ReorderRequest) error {
				return d.Testimonials.Reorder(c.Request.Context(), req.List())
			},
		}).mount(g)
	}
	if d.Statistics != nil {
		(&resource[domain.Statistic, services.StatisticInput, services.StatisticPatch]{
			name: "statistics", db: d.DB, svc: d.Statistics,
			list: func(c *gin.Context) ([]domain.Statistic, error) { return d.Statistics.List(c.Request.Context()) },
			reorder: func(c *gin.Context, req ReorderRequest) error {
				return d.Statistics.Reorder(c.Request.Context(), req.List())
			},
		}).mount(g)
	}

	if d.Inbox != nil {
		h.mountInbox(g)
	}
	if d.Uploads != nil {
		g.POST("/uploads/:kind", h.AdminUpload)
	}
	g.GET("/session", h.AdminSession)
}
