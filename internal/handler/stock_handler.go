package handler

import (
	"go-ombor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StockHandler drives the barcode intake (inbound) and dispatch (outbound) flows.
type StockHandler struct {
	service service.InventoryService
}

func NewStockHandler(s service.InventoryService) *StockHandler {
	return &StockHandler{service: s}
}

type ScanRequest struct {
	Barcode string `json:"barcode"`
}

// InboundScan looks a barcode up and tells the client which form to show
// POST /api/v1/inbound/scan
func (h *StockHandler) InboundScan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.service.InboundScan(c.UserContext(), req.Barcode)
	if err != nil {
		return respondError(c, err, "Failed to look up barcode")
	}
	return c.JSON(result)
}

// GenerateBarcode issues an unused code for goods without one
// POST /api/v1/inbound/barcode
func (h *StockHandler) GenerateBarcode(c *fiber.Ctx) error {
	result, err := h.service.GenerateBarcode(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to generate barcode")
	}
	return c.JSON(result)
}

// ConfirmInbound receives goods, creating the product when the barcode is new
// POST /api/v1/inbound
func (h *StockHandler) ConfirmInbound(c *fiber.Ctx) error {
	var req service.InboundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.service.ConfirmInbound(c.UserContext(), &req, actorName(c))
	if err != nil {
		return respondError(c, err, "Failed to record inbound")
	}
	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"message": "Inbound recorded", "data": result})
}

// OutboundScan finds the product to dispatch
// POST /api/v1/outbound/scan
func (h *StockHandler) OutboundScan(c *fiber.Ctx) error {
	var req ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	product, err := h.service.OutboundScan(c.UserContext(), req.Barcode)
	if err != nil {
		return respondError(c, err, "Failed to look up barcode")
	}
	return c.JSON(product)
}

// ConfirmOutbound dispatches goods
// POST /api/v1/outbound
func (h *StockHandler) ConfirmOutbound(c *fiber.Ctx) error {
	var req service.OutboundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	result, err := h.service.ConfirmOutbound(c.UserContext(), &req, actorName(c))
	if err != nil {
		return respondError(c, err, "Failed to record outbound")
	}
	return c.JSON(fiber.Map{"message": "Outbound recorded", "data": result})
}
