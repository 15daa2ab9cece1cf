package handler

import (
	"go-ombor/internal/model"
	"go-ombor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler serves the products page: listing, editing and the movement log.
type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetProducts lists products
// Query params: search, category
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), service.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch products")
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch product")
	}
	return c.JSON(product)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.EditProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), &req, actorName(c))
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch categories")
	}
	return c.JSON(categories)
}

// GetTransactions lists the movement log, newest first
// Query params: product_id, direction
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.ListTransactions(c.UserContext(), service.TransactionFilter{
		ProductID: c.Query("product_id"),
		Direction: model.Direction(c.Query("direction")),
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch transactions")
	}
	return c.JSON(transactions)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.service.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch transaction")
	}
	return c.JSON(tx)
}

// GetUnits lists the units of measure a product may use
func (h *InventoryHandler) GetUnits(c *fiber.Ctx) error {
	return c.JSON(model.Units)
}
