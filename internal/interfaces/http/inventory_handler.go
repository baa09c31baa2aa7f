package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e historial (protegido).
type InventoryHandler struct {
	engine        *inventory.MovementEngine
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.MovementEngine, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{engine: engine, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ENTRY y EXIT usan quantity > 0; ADJUSTMENT fija el stock al valor absoluto quantity >= 0.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, kind, quantity, document, notes"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	entry, err := h.engine.Commit(c.UserContext(), GetActor(c), toMovementInput(in), requestContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLedgerEntryResponse(entry))
}

// RegisterBulk godoc
// @Summary      Registrar lote de movimientos (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementRequest  true  "movements"
// @Success      201   {object}  dto.BulkMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/bulk [post]
func (h *InventoryHandler) RegisterBulk(c *fiber.Ctx) error {
	var in dto.BulkMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	inputs := make([]inventory.MovementInput, len(in.Movements))
	for i, m := range in.Movements {
		inputs[i] = toMovementInput(m)
	}
	entries, err := h.engine.CommitBatch(c.UserContext(), GetActor(c), inputs, requestContext(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.BulkMovementResponse{Count: len(entries), Items: make([]dto.LedgerEntryResponse, len(entries))}
	for i, e := range entries {
		out.Items[i] = toLedgerEntryResponse(e)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.LedgerEntryListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var q dto.PageQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	page := q.Resolve(50, 500)
	entries, err := h.engine.History(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.LedgerEntryListResponse{
		Items: make([]dto.LedgerEntryResponse, len(entries)),
		Page:  page,
	}
	for i, e := range entries {
		out.Items[i] = toLedgerEntryResponse(e)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reproducir el ledger y compararlo con el stock actual
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.engine.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		ProductID:     res.ProductID,
		CurrentStock:  res.CurrentStock,
		ReplayedStock: res.ReplayedStock,
		Entries:       res.Entries,
		Consistent:    res.Consistent,
		BrokenAt:      res.BrokenAt,
	})
}

// LowStock godoc
// @Summary      Productos en o bajo el stock mínimo con pedido sugerido
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/products/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Stats godoc
// @Summary      Estadísticas generales de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockStatsDTO
// @Router       /api/products/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.replenishment.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

func toMovementInput(in dto.RegisterMovementRequest) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID: in.ProductID,
		Kind:      entity.MovementKind(in.Kind),
		Quantity:  in.Quantity,
		Document:  in.Document,
		Notes:     in.Notes,
	}
}

func toLedgerEntryResponse(e *entity.StockLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		ProductID:   e.ProductID,
		Kind:        string(e.Kind),
		Quantity:    e.Quantity,
		Document:    e.Document,
		Notes:       e.Notes,
		ActorID:     e.ActorID,
		StockBefore: e.StockBefore,
		StockAfter:  e.StockAfter,
		Difference:  e.Difference(),
		CreatedAt:   e.CreatedAt,
	}
}
