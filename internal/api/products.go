package api

import (
	"net/http"
	"strconv"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
	"retail-api/internal/store"

	"github.com/gin-gonic/gin"
)

func productSnapshot(produto *models.Produto) gin.H {
	return gin.H{
		"id":              produto.ID,
		"descricao":       produto.Descricao,
		"codigo_barras":   produto.CodigoBarras,
		"estoque":         produto.Estoque,
		"preco":           produto.Preco,
		"categoria":       produto.Categoria,
		"data_validade":   produto.DataValidade,
		"imagens":         produto.Imagens,
		"disponibilidade": produto.Disponibilidade,
	}
}

// listProducts handles GET /produtos
func (h *Handler) listProducts(c *gin.Context) {
	limit, offset := pagination(c)

	filter := store.ProductFilter{
		Categoria: c.Query("categoria"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("preco"); raw != "" {
		preco, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, apperr.InvalidRequest("Preço inválido!"))
			return
		}
		filter.Preco = &preco
	}
	if raw := c.Query("disponibilidade"); raw != "" {
		disp, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, apperr.InvalidRequest("Disponibilidade inválida!"))
			return
		}
		filter.Disponibilidade = &disp
	}

	produtos, err := h.store.ListProducts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(produtos) == 0 {
		writeError(c, apperr.NotFound("Produtos não encontrados com os parâmetros solicitados!"))
		return
	}

	snapshots := make([]gin.H, len(produtos))
	for i := range produtos {
		snapshots[i] = productSnapshot(&produtos[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Produtos encontrados com sucesso.",
		"usuario":  c.GetString("usuario"),
		"total":    len(snapshots),
		"produtos": snapshots,
	})
}

// getProduct handles GET /produtos/:id
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	produto, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Produto encontrado com sucesso.",
		"usuario": c.GetString("usuario"),
		"produto": productSnapshot(produto),
	})
}

type createProductRequest struct {
	Descricao       string         `json:"descricao"`
	CodigoBarras    string         `json:"codigo_barras"`
	Estoque         *int           `json:"estoque"`
	Preco           *float64       `json:"preco"`
	Categoria       string         `json:"categoria"`
	DataValidade    *string        `json:"data_validade"`
	Imagens         models.Imagens `json:"imagens"`
	Disponibilidade *bool          `json:"disponibilidade"`
}

// createProduct handles POST /produtos
func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidRequest("Corpo da requisição inválido!").WithCause(err))
		return
	}
	if req.Descricao == "" || req.CodigoBarras == "" || req.Categoria == "" ||
		req.Estoque == nil || req.Preco == nil || req.DataValidade == nil {
		writeError(c, apperr.InvalidRequest("Informação obrigatória para cadastro não informada."))
		return
	}
	if *req.Estoque < 0 {
		writeError(c, apperr.InvalidRequest("Estoque não pode ser negativo!"))
		return
	}

	ctx := c.Request.Context()

	exists, err := h.store.ProductBarcodeInUse(ctx, req.CodigoBarras, 0)
	if err != nil {
		writeError(c, err)
		return
	}
	if exists {
		writeError(c, apperr.Conflict("Produto com essas informações já cadastrado!"))
		return
	}

	disponibilidade := true
	if req.Disponibilidade != nil {
		disponibilidade = *req.Disponibilidade
	}

	produto := &models.Produto{
		Descricao:       req.Descricao,
		CodigoBarras:    req.CodigoBarras,
		Estoque:         *req.Estoque,
		Preco:           *req.Preco,
		Categoria:       req.Categoria,
		DataValidade:    req.DataValidade,
		Imagens:         req.Imagens,
		Disponibilidade: disponibilidade,
	}
	if err := h.store.CreateProduct(ctx, produto); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Produto cadastrado com sucesso.",
		"usuario": c.GetString("usuario"),
		"produto": productSnapshot(produto),
	})
}

// productPatch enumerates the updatable fields of a product. Unknown
// body keys are ignored.
type productPatch struct {
	Descricao       *string         `json:"descricao"`
	CodigoBarras    *string         `json:"codigo_barras"`
	Estoque         *int            `json:"estoque"`
	Preco           *float64        `json:"preco"`
	Categoria       *string         `json:"categoria"`
	DataValidade    *string         `json:"data_validade"`
	Imagens         *models.Imagens `json:"imagens"`
	Disponibilidade *bool           `json:"disponibilidade"`
}

// updateProduct handles PUT /produtos/:id
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch productPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, apperr.InvalidRequest("Corpo da requisição inválido!").WithCause(err))
		return
	}

	ctx := c.Request.Context()

	produto, err := h.store.GetProductByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	if patch.CodigoBarras != nil {
		inUse, err := h.store.ProductBarcodeInUse(ctx, *patch.CodigoBarras, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if inUse {
			writeError(c, apperr.Conflict("Já existe algum produto cadastrado com esta informação única!"))
			return
		}
		produto.CodigoBarras = *patch.CodigoBarras
	}
	if patch.Estoque != nil {
		if *patch.Estoque < 0 {
			writeError(c, apperr.InvalidRequest("Estoque não pode ser negativo!"))
			return
		}
		produto.Estoque = *patch.Estoque
	}
	if patch.Descricao != nil {
		produto.Descricao = *patch.Descricao
	}
	if patch.Preco != nil {
		produto.Preco = *patch.Preco
	}
	if patch.Categoria != nil {
		produto.Categoria = *patch.Categoria
	}
	if patch.DataValidade != nil {
		produto.DataValidade = patch.DataValidade
	}
	if patch.Imagens != nil {
		produto.Imagens = *patch.Imagens
	}
	if patch.Disponibilidade != nil {
		produto.Disponibilidade = *patch.Disponibilidade
	}

	if err := h.store.UpdateProduct(ctx, produto); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Produto alterado com sucesso.",
		"usuario": c.GetString("usuario"),
		"produto": productSnapshot(produto),
	})
}

// deleteProduct handles DELETE /produtos/:id
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	produto, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.SoftDeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Produto deletado com sucesso.",
		"usuario": c.GetString("usuario"),
		"produto": productSnapshot(produto),
	})
}
