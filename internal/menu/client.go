// Package menu wraps the backend endpoints for the diner menu, tables,
// orders, waiter calls and feedback.
package menu

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

// Client talks to the menu endpoints. Inputs are validated before any call.
type Client struct {
	api    apiclient.API
	mirror storage.Store
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMirror keeps the last category list under demo_categories in store and
// serves it when the backend cannot.
func WithMirror(store storage.Store) Option {
	return func(c *Client) { c.mirror = store }
}

// NewClient builds a menu client over api.
func NewClient(api apiclient.API, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// ListCategories returns categories ordered by display_order.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	list, err := getList[domain.Category](ctx, c.api, "/categories", "categories")
	if err != nil {
		if cached, ok := c.mirroredCategories(ctx); ok {
			c.logger.Warn("categories fetch failed, serving mirror", zap.Error(err))
			return cached, nil
		}
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	if c.mirror != nil {
		if err := storage.SetJSON(ctx, c.mirror, storage.KeyDemoCategories, list); err != nil {
			c.logger.Warn("categories mirror write failed", zap.Error(err))
		}
	}
	return list, nil
}

func (c *Client) mirroredCategories(ctx context.Context) ([]domain.Category, bool) {
	if c.mirror == nil {
		return nil, false
	}
	var list []domain.Category
	found, err := storage.GetJSON(ctx, c.mirror, storage.KeyDemoCategories, &list)
	if err != nil || !found {
		return nil, false
	}
	return list, true
}

func (c *Client) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return getOne[domain.Category](ctx, c.api, fmt.Sprintf("/categories/%d", id))
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Category{}, err
	}
	return send[domain.Category](ctx, c.logger, c.api.Post, "/categories", in)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (domain.Category, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Category{}, err
	}
	return send[domain.Category](ctx, c.logger, c.api.Put, fmt.Sprintf("/categories/%d", id), in)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return remove(ctx, c.api, fmt.Sprintf("/categories/%d", id))
}

// ListProducts returns every product, or those of one category when
// categoryID is positive.
func (c *Client) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	path := "/products"
	if categoryID > 0 {
		path += "?" + url.Values{"category_id": {strconv.FormatInt(categoryID, 10)}}.Encode()
	}
	list, err := getList[domain.Product](ctx, c.api, path, "products")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return getOne[domain.Product](ctx, c.api, fmt.Sprintf("/products/%d", id))
}

func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := checkProduct(in); err != nil {
		return domain.Product{}, err
	}
	return send[domain.Product](ctx, c.logger, c.api.Post, "/products", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (domain.Product, error) {
	if err := checkProduct(in); err != nil {
		return domain.Product{}, err
	}
	return send[domain.Product](ctx, c.logger, c.api.Put, fmt.Sprintf("/products/%d", id), in)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return remove(ctx, c.api, fmt.Sprintf("/products/%d", id))
}

func checkProduct(in domain.ProductInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.Price.IsPositive() {
		return validation.Field("price", "Must be greater than 0")
	}
	return nil
}

func (c *Client) ListTables(ctx context.Context) ([]domain.Table, error) {
	list, err := getList[domain.Table](ctx, c.api, "/tables", "tables")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return list, nil
}

// TableByNumber finds the table a QR code points at.
func (c *Client) TableByNumber(ctx context.Context, number string) (domain.Table, error) {
	if !validation.ValidTableNumber(number) {
		return domain.Table{}, validation.Field("table_number", "Table number must be 1 to 10 letters, digits or dashes")
	}
	tables, err := c.ListTables(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	for _, t := range tables {
		if t.Number == number {
			return t, nil
		}
	}
	return domain.Table{}, ErrTableNotFound
}

func (c *Client) CreateTable(ctx context.Context, in domain.TableInput) (domain.Table, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Table{}, err
	}
	return send[domain.Table](ctx, c.logger, c.api.Post, "/tables", in)
}

func (c *Client) UpdateTable(ctx context.Context, id int64, in domain.TableInput) (domain.Table, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Table{}, err
	}
	return send[domain.Table](ctx, c.logger, c.api.Put, fmt.Sprintf("/tables/%d", id), in)
}

func (c *Client) DeleteTable(ctx context.Context, id int64) error {
	return remove(ctx, c.api, fmt.Sprintf("/tables/%d", id))
}
