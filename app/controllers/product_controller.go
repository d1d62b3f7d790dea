package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
)

// maxImageBytes caps product image uploads.
const maxImageBytes = 5 << 20

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index handles GET /api/products with an optional ?category_id filter.
func (p *ProductController) Index(c *ctx.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.Fail(apperr.InvalidRequest("Invalid category_id"))
			return
		}
		id := uint(n)
		categoryID = &id
	}
	list, err := p.catalog.Products(c.Context(), categoryID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(list)
}

func (p *ProductController) Items(c *ctx.Context) {
	items, err := p.catalog.AvailableItems(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(items)
}

func (p *ProductController) Show(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	product, err := p.catalog.Product(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(product)
}

func (p *ProductController) Store(c *ctx.Context) {
	var body services.ProductInput
	if !c.Bind(&body) {
		return
	}
	id, err := p.catalog.CreateProduct(c.Context(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]uint{"id": id})
}

func (p *ProductController) Update(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.ProductInput
	if !c.Bind(&body) {
		return
	}
	if err := p.catalog.UpdateProduct(c.Context(), id, body); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (p *ProductController) Destroy(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := p.catalog.DeleteProduct(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}

func (p *ProductController) StoreItem(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.ItemInput
	if !c.Bind(&body) {
		return
	}
	itemID, err := p.catalog.AddItem(c.Context(), id, body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]uint{"id": itemID})
}

func (p *ProductController) UpdateItem(c *ctx.Context) {
	id, err := c.ParamID("itemId")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.ItemInput
	if !c.Bind(&body) {
		return
	}
	if err := p.catalog.UpdateItem(c.Context(), id, body); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (p *ProductController) DestroyItem(c *ctx.Context) {
	id, err := c.ParamID("itemId")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := p.catalog.DeleteItem(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}

func (p *ProductController) StoreOption(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.OptionInput
	if !c.Bind(&body) {
		return
	}
	optionID, err := p.catalog.AddOption(c.Context(), id, body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]uint{"id": optionID})
}

func (p *ProductController) UpdateOption(c *ctx.Context) {
	id, err := c.ParamID("optionId")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.OptionInput
	if !c.Bind(&body) {
		return
	}
	if err := p.catalog.UpdateOption(c.Context(), id, body); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (p *ProductController) DestroyOption(c *ctx.Context) {
	id, err := c.ParamID("optionId")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := p.catalog.DeleteOption(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}

// UploadImage handles a multipart "image" field and stores it as the
// product's image.
func (p *ProductController) UploadImage(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}

	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxImageBytes)
	file, header, err := c.R.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Fail(apperr.InvalidRequest("image too large"))
			return
		}
		c.Fail(apperr.InvalidRequest("image required"))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.Fail(apperr.InvalidRequest("image must be an image/* upload"))
		return
	}

	url, err := p.catalog.SetImage(c.Context(), id, header.Filename, file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"image_url": url})
}
