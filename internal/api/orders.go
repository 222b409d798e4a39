package api

import (
	"net/http"
	"strconv"
	"time"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
	"retail-api/internal/service"
	"retail-api/internal/store"

	"github.com/gin-gonic/gin"
)

func orderSnapshot(pedido *models.Pedido) gin.H {
	return gin.H{
		"id":          pedido.ID,
		"cliente_id":  pedido.ClienteID,
		"status":      pedido.Status,
		"preco_total": pedido.PrecoTotal,
	}
}

// listOrders handles GET /pedidos
func (h *Handler) listOrders(c *gin.Context) {
	limit, offset := pagination(c)

	filter := store.OrderFilter{
		Status: c.Query("status"),
		Secao:  c.Query("secao"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("periodo_inicio"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, apperr.InvalidRequest("Período inicial inválido!"))
			return
		}
		filter.PeriodoInicio = &t
	}
	if raw := c.Query("periodo_fim"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, apperr.InvalidRequest("Período final inválido!"))
			return
		}
		filter.PeriodoFim = &t
	}
	if raw := c.Query("id_pedido"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, apperr.InvalidRequest("ID de pedido inválido!"))
			return
		}
		filter.PedidoID = &id
	}
	if raw := c.Query("cliente"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, apperr.InvalidRequest("ID de cliente inválido!"))
			return
		}
		filter.ClienteID = &id
	}

	pedidos, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	snapshots := make([]gin.H, len(pedidos))
	for i := range pedidos {
		snapshots[i] = orderSnapshot(&pedidos[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Pedidos encontrados com sucesso",
		"usuario": c.GetString("usuario"),
		"total":   len(snapshots),
		"pedidos": snapshots,
	})
}

// getOrder handles GET /pedidos/:id
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	pedido, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Pedido encontrado com sucesso",
		"usuario": c.GetString("usuario"),
		"pedido":  orderSnapshot(pedido),
	})
}

// createOrder handles POST /pedidos
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidRequest("Informação obrigatória para cadastro não informada").WithCause(err))
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":          "success",
		"message":         "Pedido cadastrado com sucesso",
		"usuario":         c.GetString("usuario"),
		"pedido_id":       resp.PedidoID,
		"total do pedido": resp.PrecoTotal,
		"produtos":        resp.Produtos,
	})
}

// updateOrder handles PUT /pedidos/:id
func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch service.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, apperr.InvalidRequest("Corpo da requisição inválido!").WithCause(err))
		return
	}

	pedido, err := h.orderService.UpdateOrder(c.Request.Context(), id, &patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Pedido alterado com sucesso",
		"usuario": c.GetString("usuario"),
		"pedido":  orderSnapshot(pedido),
	})
}

// deleteOrder handles DELETE /pedidos/:id
func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	pedido, err := h.orderService.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Pedido deletado com sucesso",
		"usuario": c.GetString("usuario"),
		"pedido":  orderSnapshot(pedido),
	})
}
