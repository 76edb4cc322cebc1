package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/dto"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/menu"
)

// MenuHandler exposes categories, products, tables, orders, waiter calls
// and feedback.
type MenuHandler struct {
	menu *menu.Client
}

// NewMenuHandler constructs handler.
func NewMenuHandler(client *menu.Client) *MenuHandler {
	return &MenuHandler{menu: client}
}

// Categories handles GET /api/categories.
func (h *MenuHandler) Categories(c *fiber.Ctx) error {
	list, err := h.menu.ListCategories(backendContext(c))
	if err != nil {
		return err
	}
	return writeOK(c, list)
}

// Products handles GET /api/products?category_id=.
func (h *MenuHandler) Products(c *fiber.Ctx) error {
	list, err := h.menu.ListProducts(backendContext(c), int64(c.QueryInt("category_id")))
	if err != nil {
		return err
	}
	return writeOK(c, list)
}

// Table handles GET /api/tables/:number, the landing call of a QR scan.
func (h *MenuHandler) Table(c *fiber.Ctx) error {
	table, err := h.menu.TableByNumber(backendContext(c), c.Params("number"))
	if err != nil {
		return err
	}
	return writeOK(c, table)
}

func (h *MenuHandler) CallWaiter(c *fiber.Ctx) error {
	var call domain.WaiterCall
	if err := parseBody(c, &call); err != nil {
		return err
	}
	if err := h.menu.CallWaiter(backendContext(c), call); err != nil {
		return err
	}
	return writeCreated(c, call)
}

func (h *MenuHandler) Feedback(c *fiber.Ctx) error {
	var fb domain.Feedback
	if err := parseBody(c, &fb); err != nil {
		return err
	}
	if err := h.menu.SubmitFeedback(backendContext(c), fb); err != nil {
		return err
	}
	return writeCreated(c, fb)
}

func (h *MenuHandler) CreateCategory(c *fiber.Ctx) error {
	var in domain.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.CreateCategory(backendContext(c), in)
	if err != nil {
		return err
	}
	return writeCreated(c, out)
}

func (h *MenuHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in domain.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.UpdateCategory(backendContext(c), id, in)
	if err != nil {
		return err
	}
	return writeOK(c, out)
}

func (h *MenuHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.menu.DeleteCategory(backendContext(c), id); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id})
}

func (h *MenuHandler) CreateProduct(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.CreateProduct(backendContext(c), in)
	if err != nil {
		return err
	}
	return writeCreated(c, out)
}

func (h *MenuHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in domain.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.UpdateProduct(backendContext(c), id, in)
	if err != nil {
		return err
	}
	return writeOK(c, out)
}

func (h *MenuHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.menu.DeleteProduct(backendContext(c), id); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id})
}

func (h *MenuHandler) Tables(c *fiber.Ctx) error {
	list, err := h.menu.ListTables(backendContext(c))
	if err != nil {
		return err
	}
	return writeOK(c, list)
}

func (h *MenuHandler) CreateTable(c *fiber.Ctx) error {
	var in domain.TableInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.CreateTable(backendContext(c), in)
	if err != nil {
		return err
	}
	return writeCreated(c, out)
}

func (h *MenuHandler) UpdateTable(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in domain.TableInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.menu.UpdateTable(backendContext(c), id, in)
	if err != nil {
		return err
	}
	return writeOK(c, out)
}

func (h *MenuHandler) DeleteTable(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.menu.DeleteTable(backendContext(c), id); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id})
}

// Orders handles GET /admin/api/orders?status=.
func (h *MenuHandler) Orders(c *fiber.Ctx) error {
	list, err := h.menu.ListOrders(backendContext(c), domain.OrderStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return writeOK(c, list)
}

// UpdateOrderStatus handles PUT /admin/api/orders/:id/status.
func (h *MenuHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	status := domain.OrderStatus(req.Status)
	if err := h.menu.UpdateOrderStatus(backendContext(c), id, status); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id, "status": status})
}
